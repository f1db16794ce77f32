package backend

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/invite"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/google/uuid"
)

// SendInvitation invites an email address to join an organization.
func (b *Backend) SendInvitation(ctx context.Context, c proto.Caller, opts proto.SendInvitationOptions) (proto.Invitation, error) {
	if err := authenticated(c); err != nil {
		return proto.Invitation{}, err
	}

	email, err := validateEmail(opts.Email)
	if err != nil {
		return proto.Invitation{}, err
	}
	if !b.emails.Allowed(email) {
		return proto.Invitation{}, proto.ErrEmailNotAllowed
	}

	days, err := b.expiryDays(opts.ExpiresInDays)
	if err != nil {
		return proto.Invitation{}, err
	}

	now := b.clock()
	var inv models.InvitationDetail
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.admin(ctx, tx, c, opts.OrganizationID, proto.ErrAdminToInvite); err != nil {
			return err
		}

		_, err := b.store.FindMembershipByEmail(ctx, tx, opts.OrganizationID, email)
		if err == nil {
			return proto.ErrAlreadyMember
		}
		if err := db.WrapError(err); !errors.Is(err, db.ErrRecordNotFound) {
			return err
		}

		if err := b.noPending(ctx, tx, opts.OrganizationID, email, now); err != nil {
			return err
		}

		inv, err = b.createInvitation(ctx, tx, c, opts.OrganizationID, email, days, now)
		return err
	}); err != nil {
		return proto.Invitation{}, err
	}

	invitationsCounter.WithLabelValues("sent").Inc()
	b.logger.Info("invitation sent", "invitation", inv.ID, "organization", inv.OrganizationID, "by", c.UserID)
	b.notify(inv)

	return toInvitation(inv, now), nil
}

// noPending fails when email already has a pending invitation to org.
func (b *Backend) noPending(ctx context.Context, tx *db.Tx, org, email string, now time.Time) error {
	open, err := b.store.ListOpenInvitationsByEmail(ctx, tx, org, email)
	if err != nil {
		return db.WrapError(err)
	}
	for _, o := range open {
		if invite.Of(o.Invitation, now).IsPending() {
			return proto.ErrPendingInvitation
		}
	}
	return nil
}

func (b *Backend) createInvitation(ctx context.Context, tx *db.Tx, c proto.Caller, org, email string, days int, now time.Time) (models.InvitationDetail, error) {
	inv := models.Invitation{
		ID:             uuid.NewString(),
		Email:          email,
		OrganizationID: org,
		InvitedByID:    c.UserID,
		CreatedAt:      now,
		ExpiresAt: sql.NullTime{
			Time:  now.Add(time.Duration(days) * 24 * time.Hour),
			Valid: true,
		},
	}
	if err := b.store.CreateInvitation(ctx, tx, inv); err != nil {
		return models.InvitationDetail{}, db.WrapError(err)
	}

	detail, err := b.store.GetInvitationByID(ctx, tx, inv.ID)
	return detail, db.WrapError(err)
}

// OrganizationInvitations returns the invitations of an organization that
// were neither accepted nor revoked, newest first. Expired invitations are
// included.
func (b *Backend) OrganizationInvitations(ctx context.Context, c proto.Caller, org string) ([]proto.Invitation, error) {
	if err := authenticated(c); err != nil {
		return nil, err
	}

	var invs []models.InvitationDetail
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.admin(ctx, tx, c, org, proto.ErrAdminToViewInvitations); err != nil {
			return err
		}

		var err error
		invs, err = b.store.ListOpenInvitations(ctx, tx, org)
		return db.WrapError(err)
	}); err != nil {
		return nil, err
	}

	now := b.clock()
	res := make([]proto.Invitation, len(invs))
	for i, inv := range invs {
		res[i] = toInvitation(inv, now)
	}
	return res, nil
}

// UserInvitations returns the pending invitations sent to the caller's
// email address, newest first.
func (b *Backend) UserInvitations(ctx context.Context, c proto.Caller) ([]proto.Invitation, error) {
	if err := authenticated(c); err != nil {
		return nil, err
	}

	res := []proto.Invitation{}
	if c.Email == "" {
		return res, nil
	}

	invs, err := b.store.ListOpenInvitationsByEmail(ctx, b.db, "", c.Email)
	if err != nil {
		return nil, db.WrapError(err)
	}

	now := b.clock()
	for _, inv := range invs {
		if invite.Of(inv.Invitation, now).IsPending() {
			res = append(res, toInvitation(inv, now))
		}
	}
	return res, nil
}

// Invitation returns a pending invitation. It does not require an identity
// so that invitees can look at an invitation before signing in.
func (b *Backend) Invitation(ctx context.Context, id string) (proto.Invitation, error) {
	inv, err := b.store.GetInvitationByID(ctx, b.db, id)
	if err != nil {
		return proto.Invitation{}, notFound(err, proto.ErrInvitationNotFound)
	}

	now := b.clock()
	if err := stateError(invite.Of(inv.Invitation, now)); err != nil {
		return proto.Invitation{}, err
	}

	return toInvitation(inv, now), nil
}

// AcceptInvitation makes the caller a member of the organization they were
// invited to. The invitation must have been sent to the caller's email
// address.
func (b *Backend) AcceptInvitation(ctx context.Context, c proto.Caller, id string) (proto.Acceptance, error) {
	if err := authenticated(c); err != nil {
		return proto.Acceptance{}, err
	}

	if c.Email == "" {
		return proto.Acceptance{}, proto.ErrEmailRequiredToAccept
	}

	now := b.clock()
	var res proto.Acceptance
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		u, err := b.freshUser(ctx, tx, c.UserID)
		if err != nil {
			return err
		}
		if !hasName(u) {
			return proto.ErrNameRequiredToAccept
		}

		inv, err := b.store.GetInvitationByID(ctx, tx, id)
		if err != nil {
			return notFound(err, proto.ErrInvitationNotFound)
		}

		if inv.Email != c.Email {
			return proto.ErrInvitationNotForYou
		}

		if err := stateError(invite.Of(inv.Invitation, now)); err != nil {
			return err
		}

		_, err = b.store.FindMembership(ctx, tx, inv.OrganizationID, c.UserID)
		if err == nil {
			return proto.ErrAlreadyJoined
		}
		if err := db.WrapError(err); !errors.Is(err, db.ErrRecordNotFound) {
			return err
		}

		ok, err := b.store.AcceptInvitation(ctx, tx, id, now)
		if err != nil {
			return db.WrapError(err)
		}
		if !ok {
			return b.lostRace(ctx, tx, id, now, proto.ErrInvitationAccepted)
		}

		m := models.Membership{
			ID:             uuid.NewString(),
			UserID:         c.UserID,
			OrganizationID: inv.OrganizationID,
			Role:           access.RoleMember,
			JoinedAt:       now,
		}
		if err := b.store.CreateMembership(ctx, tx, m); err != nil {
			if err := db.WrapError(err); errors.Is(err, db.ErrDuplicateKey) {
				return proto.ErrAlreadyJoined
			}
			return db.WrapError(err)
		}

		res = proto.Acceptance{
			Organization: proto.OrganizationRef{
				ID:   inv.OrganizationID,
				Name: inv.OrganizationName,
			},
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
		return nil
	}); err != nil {
		return proto.Acceptance{}, err
	}

	invitationsCounter.WithLabelValues("accepted").Inc()
	b.logger.Info("invitation accepted", "invitation", id, "organization", res.Organization.ID, "user", c.UserID)
	return res, nil
}

// lostRace returns the failure for a conditional invitation update that
// matched no row because another transaction got there first.
func (b *Backend) lostRace(ctx context.Context, tx *db.Tx, id string, now time.Time, fallback error) error {
	inv, err := b.store.GetInvitationByID(ctx, tx, id)
	if err != nil {
		return notFound(err, proto.ErrInvitationNotFound)
	}
	if err := stateError(invite.Of(inv.Invitation, now)); err != nil {
		return err
	}
	return fallback
}

// invitationForAdmin returns an invitation after checking that the caller
// is an admin of its organization.
func (b *Backend) invitationForAdmin(ctx context.Context, tx *db.Tx, c proto.Caller, id string, denied error) (models.InvitationDetail, error) {
	inv, err := b.store.GetInvitationByID(ctx, tx, id)
	if err != nil {
		return models.InvitationDetail{}, notFound(err, proto.ErrInvitationNotFound)
	}

	if _, err := b.admin(ctx, tx, c, inv.OrganizationID, denied); err != nil {
		return models.InvitationDetail{}, err
	}

	return inv, nil
}

// RevokeInvitation withdraws an invitation. Accepted and revoked invitations
// cannot be revoked.
func (b *Backend) RevokeInvitation(ctx context.Context, c proto.Caller, id string) error {
	if err := authenticated(c); err != nil {
		return err
	}

	now := b.clock()
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		inv, err := b.invitationForAdmin(ctx, tx, c, id, proto.ErrAdminToRevoke)
		if err != nil {
			return err
		}

		if err := revokeError(invite.Of(inv.Invitation, now)); err != nil {
			return err
		}

		ok, err := b.store.RevokeInvitation(ctx, tx, id, now)
		if err != nil {
			return db.WrapError(err)
		}
		if !ok {
			after, err := b.store.GetInvitationByID(ctx, tx, id)
			if err != nil {
				return notFound(err, proto.ErrInvitationNotFound)
			}
			if err := revokeError(invite.Of(after.Invitation, now)); err != nil {
				return err
			}
			return proto.ErrAlreadyRevoked
		}
		return nil
	}); err != nil {
		return err
	}

	invitationsCounter.WithLabelValues("revoked").Inc()
	b.logger.Info("invitation revoked", "invitation", id, "by", c.UserID)
	return nil
}

func revokeError(s invite.State) error {
	switch s.Kind {
	case invite.Accepted:
		return proto.ErrCannotRevokeAccepted
	case invite.Revoked:
		return proto.ErrAlreadyRevoked
	default:
		return nil
	}
}

// ResendInvitation replaces an invitation with a new one for the same email
// address and organization. The old invitation is revoked.
func (b *Backend) ResendInvitation(ctx context.Context, c proto.Caller, id string, expiresInDays int) (proto.Invitation, error) {
	if err := authenticated(c); err != nil {
		return proto.Invitation{}, err
	}

	days, err := b.expiryDays(expiresInDays)
	if err != nil {
		return proto.Invitation{}, err
	}

	now := b.clock()
	var inv models.InvitationDetail
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		old, err := b.invitationForAdmin(ctx, tx, c, id, proto.ErrAdminToResend)
		if err != nil {
			return err
		}

		state := invite.Of(old.Invitation, now)
		if state.Kind == invite.Accepted {
			return proto.ErrCannotResendAccepted
		}

		if state.Kind != invite.Revoked {
			ok, err := b.store.RevokeInvitation(ctx, tx, id, now)
			if err != nil {
				return db.WrapError(err)
			}
			if !ok {
				after, err := b.store.GetInvitationByID(ctx, tx, id)
				if err != nil {
					return notFound(err, proto.ErrInvitationNotFound)
				}
				if after.AcceptedAt.Valid {
					return proto.ErrCannotResendAccepted
				}
			}
		}

		if err := b.noPending(ctx, tx, old.OrganizationID, old.Email, now); err != nil {
			return err
		}

		inv, err = b.createInvitation(ctx, tx, c, old.OrganizationID, old.Email, days, now)
		return err
	}); err != nil {
		return proto.Invitation{}, err
	}

	invitationsCounter.WithLabelValues("resent").Inc()
	b.logger.Info("invitation resent", "invitation", inv.ID, "replaces", id, "by", c.UserID)
	b.notify(inv)

	return toInvitation(inv, now), nil
}
