package models

import (
	"database/sql"
	"time"
)

// Invitation is an offer to join an organization, bound to an email address.
// Its lifecycle state is derived from the nullable timestamps.
type Invitation struct {
	ID             string       `db:"id"`
	Email          string       `db:"email"`
	OrganizationID string       `db:"organization_id"`
	InvitedByID    string       `db:"invited_by_id"`
	CreatedAt      time.Time    `db:"created_at"`
	ExpiresAt      sql.NullTime `db:"expires_at"`
	AcceptedAt     sql.NullTime `db:"accepted_at"`
	RevokedAt      sql.NullTime `db:"revoked_at"`
}

// InvitationDetail is an invitation joined with its organization and inviter.
type InvitationDetail struct {
	Invitation
	OrganizationName string         `db:"organization_name"`
	InviterName      sql.NullString `db:"inviter_name"`
	InviterEmail     sql.NullString `db:"inviter_email"`
}

// NotificationDelivery records one attempt at notifying an invitee.
type NotificationDelivery struct {
	ID             string         `db:"id"`
	InvitationID   string         `db:"invitation_id"`
	Channel        string         `db:"channel"`
	Recipient      string         `db:"recipient"`
	ResponseStatus int            `db:"response_status"`
	Error          sql.NullString `db:"error"`
	CreatedAt      time.Time      `db:"created_at"`
}
