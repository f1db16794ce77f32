package proto

import (
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/invite"
)

// OrganizationRef identifies an organization by id and name.
type OrganizationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Inviter is the user who sent an invitation.
type Inviter struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Invitation is an invitation with its derived state.
type Invitation struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Organization OrganizationRef `json:"organization"`
	InvitedByID  string          `json:"invitedById"`
	InvitedBy    Inviter         `json:"invitedBy"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty"`
	AcceptedAt   *time.Time      `json:"acceptedAt,omitempty"`
	RevokedAt    *time.Time      `json:"revokedAt,omitempty"`
	State        invite.Kind     `json:"state"`
}

// SendInvitationOptions are options for sending an invitation.
type SendInvitationOptions struct {
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	// ExpiresInDays is the validity of the invitation. Zero means the
	// configured default.
	ExpiresInDays int `json:"expiresInDays,omitempty"`
}

// Acceptance is the result of accepting an invitation.
type Acceptance struct {
	Organization OrganizationRef `json:"organization"`
	Role         access.Role     `json:"role"`
	JoinedAt     time.Time       `json:"joinedAt"`
}

// Notification is a request to tell an invitee about an invitation.
type Notification struct {
	InvitationID     string     `json:"invitation_id" url:"invitation_id"`
	Email            string     `json:"email" url:"email"`
	OrganizationName string     `json:"organization_name" url:"organization_name"`
	InviterName      string     `json:"inviter_name" url:"inviter_name"`
	InviterEmail     string     `json:"inviter_email" url:"inviter_email"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty" url:"expires_at,omitempty"`
	URL              string     `json:"url" url:"url"`
}
