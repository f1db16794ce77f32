package database

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/store"
)

var _ store.InvitationStore = (*invitationStore)(nil)

type invitationStore struct{}

const selectInvitationDetail = `
	SELECT
	  i.*,
	  o.name AS organization_name,
	  u.name AS inviter_name,
	  u.email AS inviter_email
	FROM
	  invitations i
	  JOIN organizations o ON o.id = i.organization_id
	  LEFT JOIN users u ON u.id = i.invited_by_id
`

// CreateInvitation implements store.InvitationStore.
func (*invitationStore) CreateInvitation(ctx context.Context, h db.Handler, inv models.Invitation) error {
	query := h.Rebind(`
		INSERT INTO
		  invitations (id, email, organization_id, invited_by_id, created_at, expires_at)
		VALUES
		  (?, ?, ?, ?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, inv.ID, inv.Email, inv.OrganizationID, inv.InvitedByID, inv.CreatedAt, inv.ExpiresAt)
	return err
}

// GetInvitationByID implements store.InvitationStore.
func (*invitationStore) GetInvitationByID(ctx context.Context, h db.Handler, id string) (models.InvitationDetail, error) {
	var m models.InvitationDetail
	query := h.Rebind(selectInvitationDetail + `
		WHERE
		  i.id = ?;
	`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListOpenInvitations implements store.InvitationStore.
func (*invitationStore) ListOpenInvitations(ctx context.Context, h db.Handler, org string) ([]models.InvitationDetail, error) {
	var m []models.InvitationDetail
	query := h.Rebind(selectInvitationDetail + `
		WHERE
		  i.organization_id = ?
		  AND i.accepted_at IS NULL
		  AND i.revoked_at IS NULL
		ORDER BY
		  i.created_at DESC,
		  i.id DESC;
	`)
	err := h.SelectContext(ctx, &m, query, org)
	return m, err
}

// ListOpenInvitationsByEmail implements store.InvitationStore.
func (*invitationStore) ListOpenInvitationsByEmail(ctx context.Context, h db.Handler, org, email string) ([]models.InvitationDetail, error) {
	var m []models.InvitationDetail
	args := []interface{}{email}
	where := `
		WHERE
		  i.email = ?
		  AND i.accepted_at IS NULL
		  AND i.revoked_at IS NULL
	`
	if org != "" {
		where += `  AND i.organization_id = ?
	`
		args = append(args, org)
	}

	query := h.Rebind(selectInvitationDetail + where + `
		ORDER BY
		  i.created_at DESC,
		  i.id DESC;
	`)
	err := h.SelectContext(ctx, &m, query, args...)
	return m, err
}

// AcceptInvitation implements store.InvitationStore.
func (*invitationStore) AcceptInvitation(ctx context.Context, h db.Handler, id string, at time.Time) (bool, error) {
	query := h.Rebind(`
		UPDATE invitations
		SET
		  accepted_at = ?
		WHERE
		  id = ?
		  AND accepted_at IS NULL
		  AND revoked_at IS NULL;
	`)
	n, err := execCount(ctx, h, query, at, id)
	return n > 0, err
}

// RevokeInvitation implements store.InvitationStore.
func (*invitationStore) RevokeInvitation(ctx context.Context, h db.Handler, id string, at time.Time) (bool, error) {
	query := h.Rebind(`
		UPDATE invitations
		SET
		  revoked_at = ?
		WHERE
		  id = ?
		  AND accepted_at IS NULL
		  AND revoked_at IS NULL;
	`)
	n, err := execCount(ctx, h, query, at, id)
	return n > 0, err
}
