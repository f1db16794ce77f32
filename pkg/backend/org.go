package backend

import (
	"context"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/google/uuid"
)

// CreateOrganization creates an organization with the caller as its only
// admin.
func (b *Backend) CreateOrganization(ctx context.Context, c proto.Caller, name string) (proto.Organization, error) {
	if err := authenticated(c); err != nil {
		return proto.Organization{}, err
	}

	name, err := validateName(name, proto.ErrOrgNameRequired, proto.ErrOrgNameTooLong)
	if err != nil {
		return proto.Organization{}, err
	}

	now := b.clock()
	org := models.Organization{
		ID:          uuid.NewString(),
		Name:        name,
		CreatedByID: c.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m := models.Membership{
		ID:             uuid.NewString(),
		UserID:         c.UserID,
		OrganizationID: org.ID,
		Role:           access.RoleAdmin,
		JoinedAt:       now,
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		u, err := b.freshUser(ctx, tx, c.UserID)
		if err != nil {
			return err
		}
		if !hasName(u) {
			return proto.ErrNameNeededForOrg
		}

		if err := b.store.CreateOrg(ctx, tx, org); err != nil {
			return db.WrapError(err)
		}

		return db.WrapError(b.store.CreateMembership(ctx, tx, m))
	}); err != nil {
		return proto.Organization{}, err
	}

	b.logger.Info("organization created", "organization", org.ID, "user", c.UserID)

	o := toOrganization(org)
	o.Role = m.Role
	o.JoinedAt = &m.JoinedAt
	return o, nil
}

// Organization returns an organization with its members. Only members can
// see an organization.
func (b *Backend) Organization(ctx context.Context, c proto.Caller, id string) (proto.OrganizationDetail, error) {
	if err := authenticated(c); err != nil {
		return proto.OrganizationDetail{}, err
	}

	var detail proto.OrganizationDetail
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := b.membership(ctx, tx, c, id, proto.ErrNotOrgMember)
		if err != nil {
			return err
		}

		org, err := b.store.GetOrgByID(ctx, tx, id)
		if err != nil {
			return db.WrapError(err)
		}

		members, err := b.store.ListOrgMembers(ctx, tx, id)
		if err != nil {
			return db.WrapError(err)
		}

		detail.Organization = toOrganization(org)
		detail.Organization.Role = m.Role
		detail.Organization.JoinedAt = &m.JoinedAt
		detail.UserRole = m.Role
		detail.Members = make([]proto.Member, len(members))
		for i, mem := range members {
			detail.Members[i] = toMember(mem)
		}
		return nil
	}); err != nil {
		return proto.OrganizationDetail{}, err
	}

	return detail, nil
}

// UpdateOrganizationName renames an organization.
func (b *Backend) UpdateOrganizationName(ctx context.Context, c proto.Caller, id, name string) (proto.Organization, error) {
	if err := authenticated(c); err != nil {
		return proto.Organization{}, err
	}

	name, err := validateName(name, proto.ErrOrgNameRequired, proto.ErrOrgNameTooLong)
	if err != nil {
		return proto.Organization{}, err
	}

	var org models.Organization
	var m models.Membership
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err = b.admin(ctx, tx, c, id, proto.ErrAdminToRename)
		if err != nil {
			return err
		}

		if err := b.store.SetOrgName(ctx, tx, id, name, b.clock()); err != nil {
			return db.WrapError(err)
		}

		org, err = b.store.GetOrgByID(ctx, tx, id)
		return db.WrapError(err)
	}); err != nil {
		return proto.Organization{}, err
	}

	o := toOrganization(org)
	o.Role = m.Role
	o.JoinedAt = &m.JoinedAt
	return o, nil
}

// UserOrganizations returns the organizations the caller belongs to, most
// recently joined first.
func (b *Backend) UserOrganizations(ctx context.Context, c proto.Caller) ([]proto.Organization, error) {
	if err := authenticated(c); err != nil {
		return nil, err
	}

	ms, err := b.store.ListUserMemberships(ctx, b.db, c.UserID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	orgs := make([]proto.Organization, len(ms))
	for i, m := range ms {
		joinedAt := m.JoinedAt
		orgs[i] = proto.Organization{
			ID:          m.OrganizationID,
			Name:        m.OrganizationName,
			CreatedByID: m.OrganizationCreatedBy,
			CreatedAt:   m.OrganizationCreatedAt,
			UpdatedAt:   m.OrganizationUpdatedAt,
			Role:        m.Role,
			JoinedAt:    &joinedAt,
		}
	}

	return orgs, nil
}

// orgMembership returns the membership with the given id if it belongs to
// org.
func (b *Backend) orgMembership(ctx context.Context, h db.Handler, org, id string) (models.Membership, error) {
	m, err := b.store.GetMembershipByID(ctx, h, id)
	if err != nil {
		return models.Membership{}, notFound(err, proto.ErrMembershipNotFound)
	}
	if m.OrganizationID != org {
		return models.Membership{}, proto.ErrMembershipNotFound
	}
	return m, nil
}
