package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/notify"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/google/uuid"
)

// notify dispatches the invitation notification on every channel. Delivery
// happens in the background and never affects the invitation itself.
func (b *Backend) notify(inv models.InvitationDetail) {
	n := proto.Notification{
		InvitationID:     inv.ID,
		Email:            inv.Email,
		OrganizationName: inv.OrganizationName,
		InviterName:      inv.InviterName.String,
		InviterEmail:     inv.InviterEmail.String,
		ExpiresAt:        timePtr(inv.ExpiresAt),
		URL:              b.cfg.InvitationURL(inv.ID),
	}

	for _, ch := range b.notifiers {
		ch := ch
		id := fmt.Sprintf("notify-%s-%s", inv.ID, ch.Name())
		b.manager.Go(id, func(ctx context.Context) error {
			ctx = log.WithContext(ctx, b.logger)
			b.deliver(ctx, ch, n)
			return nil
		})
	}
}

func (b *Backend) deliver(ctx context.Context, ch notify.Notifier, n proto.Notification) {
	res, err := ch.Notify(ctx, n)
	notificationsCounter.WithLabelValues(ch.Name(), strconv.FormatBool(err != nil)).Inc()

	d := models.NotificationDelivery{
		ID:             uuid.NewString(),
		InvitationID:   n.InvitationID,
		Channel:        ch.Name(),
		Recipient:      n.Email,
		ResponseStatus: res.Status,
		CreatedAt:      b.clock(),
	}
	if err != nil {
		b.logger.Error("failed to deliver invitation", "channel", ch.Name(), "invitation", n.InvitationID, "err", err)
		d.Error = sql.NullString{String: err.Error(), Valid: true}
	}

	if err := b.store.CreateDelivery(ctx, b.db, d); err != nil {
		b.logger.Error("failed to record delivery", "channel", ch.Name(), "invitation", n.InvitationID, "err", err)
	}
}

// Delivery is a notification delivery attempt.
type Delivery struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvitationDeliveries returns the notification attempts of an invitation,
// newest first.
func (b *Backend) InvitationDeliveries(ctx context.Context, c proto.Caller, id string) ([]Delivery, error) {
	if err := authenticated(c); err != nil {
		return nil, err
	}

	var ds []models.NotificationDelivery
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.invitationForAdmin(ctx, tx, c, id, proto.ErrAdminToViewInvitations); err != nil {
			return err
		}

		var err error
		ds, err = b.store.ListDeliveries(ctx, tx, id)
		return db.WrapError(err)
	}); err != nil {
		return nil, err
	}

	res := make([]Delivery, len(ds))
	for i, d := range ds {
		res[i] = Delivery{
			ID:        d.ID,
			Channel:   d.Channel,
			Recipient: d.Recipient,
			Status:    d.ResponseStatus,
			Error:     d.Error.String,
			CreatedAt: d.CreatedAt,
		}
	}
	return res, nil
}

// PruneDeliveries deletes the delivery records older than retention.
func (b *Backend) PruneDeliveries(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, errors.New("retention must be positive")
	}

	n, err := b.store.DeleteDeliveriesBefore(ctx, b.db, b.clock().Add(-retention))
	if err != nil {
		return 0, db.WrapError(err)
	}
	return n, nil
}
