package store

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
)

// OrgStore is a store for organizations.
type OrgStore interface {
	CreateOrg(ctx context.Context, h db.Handler, org models.Organization) error
	GetOrgByID(ctx context.Context, h db.Handler, id string) (models.Organization, error)
	SetOrgName(ctx context.Context, h db.Handler, id, name string, updatedAt time.Time) error
}

// MembershipStore is a store for organization memberships.
type MembershipStore interface {
	CreateMembership(ctx context.Context, h db.Handler, m models.Membership) error
	GetMembershipByID(ctx context.Context, h db.Handler, id string) (models.Membership, error)
	FindMembership(ctx context.Context, h db.Handler, org, user string) (models.Membership, error)
	FindMembershipByEmail(ctx context.Context, h db.Handler, org, email string) (models.Membership, error)
	ListOrgMembers(ctx context.Context, h db.Handler, org string) ([]models.Member, error)
	ListUserMemberships(ctx context.Context, h db.Handler, user string) ([]models.UserMembership, error)
	SetMembershipRole(ctx context.Context, h db.Handler, id string, role access.Role) error
	DeleteMembership(ctx context.Context, h db.Handler, id string) error
	// CountAdmins returns the number of admins of an organization. Within a
	// PostgreSQL transaction the admin memberships stay locked until the
	// transaction ends.
	CountAdmins(ctx context.Context, h db.Handler, org string) (int, error)
}
