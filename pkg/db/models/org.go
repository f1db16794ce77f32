package models

import (
	"database/sql"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
)

// Organization represents an organization in the system.
type Organization struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	CreatedByID string    `db:"created_by_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Membership links a user to an organization with a role.
type Membership struct {
	ID             string      `db:"id"`
	UserID         string      `db:"user_id"`
	OrganizationID string      `db:"organization_id"`
	Role           access.Role `db:"role"`
	JoinedAt       time.Time   `db:"joined_at"`
}

// Member is a membership joined with the member's user profile.
type Member struct {
	Membership
	UserName  sql.NullString `db:"user_name"`
	UserEmail sql.NullString `db:"user_email"`
}

// UserMembership is a membership joined with its organization.
type UserMembership struct {
	Membership
	OrganizationName      string    `db:"organization_name"`
	OrganizationCreatedBy string    `db:"organization_created_by_id"`
	OrganizationCreatedAt time.Time `db:"organization_created_at"`
	OrganizationUpdatedAt time.Time `db:"organization_updated_at"`
}
