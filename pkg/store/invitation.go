package store

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
)

// InvitationStore is a store for invitations.
type InvitationStore interface {
	CreateInvitation(ctx context.Context, h db.Handler, inv models.Invitation) error
	GetInvitationByID(ctx context.Context, h db.Handler, id string) (models.InvitationDetail, error)
	// ListOpenInvitations returns the invitations of an organization that
	// are neither accepted nor revoked, newest first.
	ListOpenInvitations(ctx context.Context, h db.Handler, org string) ([]models.InvitationDetail, error)
	// ListOpenInvitationsByEmail returns the invitations sent to an email
	// address that are neither accepted nor revoked, newest first. An empty
	// org matches every organization.
	ListOpenInvitationsByEmail(ctx context.Context, h db.Handler, org, email string) ([]models.InvitationDetail, error)
	// AcceptInvitation marks an open invitation as accepted. It reports
	// false when the invitation was already accepted or revoked.
	AcceptInvitation(ctx context.Context, h db.Handler, id string, at time.Time) (bool, error)
	// RevokeInvitation marks an open invitation as revoked. It reports
	// false when the invitation was already accepted or revoked.
	RevokeInvitation(ctx context.Context, h db.Handler, id string, at time.Time) (bool, error)
}
