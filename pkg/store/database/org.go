package database

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/store"
)

var _ store.OrgStore = (*orgStore)(nil)

type orgStore struct{}

// CreateOrg implements store.OrgStore.
func (*orgStore) CreateOrg(ctx context.Context, h db.Handler, org models.Organization) error {
	query := h.Rebind(`
		INSERT INTO
		  organizations (id, name, created_by_id, created_at, updated_at)
		VALUES
		  (?, ?, ?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, org.ID, org.Name, org.CreatedByID, org.CreatedAt, org.UpdatedAt)
	return err
}

// GetOrgByID implements store.OrgStore.
func (*orgStore) GetOrgByID(ctx context.Context, h db.Handler, id string) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// SetOrgName implements store.OrgStore.
func (*orgStore) SetOrgName(ctx context.Context, h db.Handler, id, name string, updatedAt time.Time) error {
	query := h.Rebind(`
		UPDATE organizations
		SET
		  name = ?,
		  updated_at = ?
		WHERE
		  id = ?
	`)
	return execOne(ctx, h, query, name, updatedAt, id)
}

var _ store.MembershipStore = (*membershipStore)(nil)

type membershipStore struct{}

// CreateMembership implements store.MembershipStore.
func (*membershipStore) CreateMembership(ctx context.Context, h db.Handler, m models.Membership) error {
	query := h.Rebind(`
		INSERT INTO
		  memberships (id, user_id, organization_id, role, joined_at)
		VALUES
		  (?, ?, ?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, m.ID, m.UserID, m.OrganizationID, m.Role, m.JoinedAt)
	return err
}

// GetMembershipByID implements store.MembershipStore.
func (*membershipStore) GetMembershipByID(ctx context.Context, h db.Handler, id string) (models.Membership, error) {
	var m models.Membership
	query := h.Rebind(`SELECT * FROM memberships WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// FindMembership implements store.MembershipStore.
func (*membershipStore) FindMembership(ctx context.Context, h db.Handler, org, user string) (models.Membership, error) {
	var m models.Membership
	query := h.Rebind(`
		SELECT
		  *
		FROM
		  memberships
		WHERE
		  organization_id = ?
		  AND user_id = ?;
	`)
	err := h.GetContext(ctx, &m, query, org, user)
	return m, err
}

// FindMembershipByEmail implements store.MembershipStore.
func (*membershipStore) FindMembershipByEmail(ctx context.Context, h db.Handler, org, email string) (models.Membership, error) {
	var m models.Membership
	query := h.Rebind(`
		SELECT
		  m.*
		FROM
		  memberships m
		  JOIN users u ON u.id = m.user_id
		WHERE
		  m.organization_id = ?
		  AND u.email = ?;
	`)
	err := h.GetContext(ctx, &m, query, org, email)
	return m, err
}

// ListOrgMembers implements store.MembershipStore.
func (*membershipStore) ListOrgMembers(ctx context.Context, h db.Handler, org string) ([]models.Member, error) {
	var m []models.Member
	query := h.Rebind(`
		SELECT
		  m.*,
		  u.name AS user_name,
		  u.email AS user_email
		FROM
		  memberships m
		  JOIN users u ON u.id = m.user_id
		WHERE
		  m.organization_id = ?
		ORDER BY
		  m.joined_at ASC,
		  m.id ASC;
	`)
	err := h.SelectContext(ctx, &m, query, org)
	return m, err
}

// ListUserMemberships implements store.MembershipStore.
func (*membershipStore) ListUserMemberships(ctx context.Context, h db.Handler, user string) ([]models.UserMembership, error) {
	var m []models.UserMembership
	query := h.Rebind(`
		SELECT
		  m.*,
		  o.name AS organization_name,
		  o.created_by_id AS organization_created_by_id,
		  o.created_at AS organization_created_at,
		  o.updated_at AS organization_updated_at
		FROM
		  memberships m
		  JOIN organizations o ON o.id = m.organization_id
		WHERE
		  m.user_id = ?
		ORDER BY
		  m.joined_at DESC,
		  m.id DESC;
	`)
	err := h.SelectContext(ctx, &m, query, user)
	return m, err
}

// SetMembershipRole implements store.MembershipStore.
func (*membershipStore) SetMembershipRole(ctx context.Context, h db.Handler, id string, role access.Role) error {
	query := h.Rebind(`UPDATE memberships SET role = ? WHERE id = ?;`)
	return execOne(ctx, h, query, role, id)
}

// DeleteMembership implements store.MembershipStore.
func (*membershipStore) DeleteMembership(ctx context.Context, h db.Handler, id string) error {
	query := h.Rebind(`DELETE FROM memberships WHERE id = ?;`)
	return execOne(ctx, h, query, id)
}

// CountAdmins implements store.MembershipStore.
func (*membershipStore) CountAdmins(ctx context.Context, h db.Handler, org string) (int, error) {
	if db.IsPostgres(h) {
		// Aggregates cannot be locked, lock the rows and count them here.
		var ids []string
		query := h.Rebind(`
			SELECT
			  id
			FROM
			  memberships
			WHERE
			  organization_id = ?
			  AND role = ?
			FOR UPDATE;
		`)
		if err := h.SelectContext(ctx, &ids, query, org, access.RoleAdmin); err != nil {
			return 0, err
		}
		return len(ids), nil
	}

	var count int
	query := h.Rebind(`
		SELECT
		  COUNT(*)
		FROM
		  memberships
		WHERE
		  organization_id = ?
		  AND role = ?;
	`)
	err := h.GetContext(ctx, &count, query, org, access.RoleAdmin)
	return count, err
}
