package database

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/store"
)

var _ store.DeliveryStore = (*deliveryStore)(nil)

type deliveryStore struct{}

// CreateDelivery implements store.DeliveryStore.
func (*deliveryStore) CreateDelivery(ctx context.Context, h db.Handler, d models.NotificationDelivery) error {
	query := h.Rebind(`
		INSERT INTO
		  notification_deliveries (id, invitation_id, channel, recipient, response_status, error, created_at)
		VALUES
		  (?, ?, ?, ?, ?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, d.ID, d.InvitationID, d.Channel, d.Recipient, d.ResponseStatus, d.Error, d.CreatedAt)
	return err
}

// ListDeliveries implements store.DeliveryStore.
func (*deliveryStore) ListDeliveries(ctx context.Context, h db.Handler, invitation string) ([]models.NotificationDelivery, error) {
	var m []models.NotificationDelivery
	query := h.Rebind(`
		SELECT
		  *
		FROM
		  notification_deliveries
		WHERE
		  invitation_id = ?
		ORDER BY
		  created_at DESC;
	`)
	err := h.SelectContext(ctx, &m, query, invitation)
	return m, err
}

// DeleteDeliveriesBefore implements store.DeliveryStore.
func (*deliveryStore) DeleteDeliveriesBefore(ctx context.Context, h db.Handler, before time.Time) (int64, error) {
	query := h.Rebind(`DELETE FROM notification_deliveries WHERE created_at < ?;`)
	return execCount(ctx, h, query, before)
}
