package backend

import (
	"database/sql"
	"time"

	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/invite"
	"github.com/charmbracelet/roster/pkg/proto"
)

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toOrganization(o models.Organization) proto.Organization {
	return proto.Organization{
		ID:          o.ID,
		Name:        o.Name,
		CreatedByID: o.CreatedByID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toMember(m models.Member) proto.Member {
	return proto.Member{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Role:           m.Role,
		JoinedAt:       m.JoinedAt,
		User: proto.UserSummary{
			ID:    m.UserID,
			Name:  m.UserName.String,
			Email: m.UserEmail.String,
		},
	}
}

func toInvitation(inv models.InvitationDetail, now time.Time) proto.Invitation {
	return proto.Invitation{
		ID:    inv.ID,
		Email: inv.Email,
		Organization: proto.OrganizationRef{
			ID:   inv.OrganizationID,
			Name: inv.OrganizationName,
		},
		InvitedByID: inv.InvitedByID,
		InvitedBy: proto.Inviter{
			Name:  inv.InviterName.String,
			Email: inv.InviterEmail.String,
		},
		CreatedAt:  inv.CreatedAt,
		ExpiresAt:  timePtr(inv.ExpiresAt),
		AcceptedAt: timePtr(inv.AcceptedAt),
		RevokedAt:  timePtr(inv.RevokedAt),
		State:      invite.Of(inv.Invitation, now).Kind,
	}
}

func toProfile(u models.User) proto.Profile {
	return proto.Profile{
		ID:        u.ID,
		Name:      u.Name.String,
		Email:     u.Email.String,
		CreatedAt: u.CreatedAt,
	}
}

func toCategory(c models.Category) proto.Category {
	return proto.Category{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Description:    c.Description.String,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// stateError returns the failure for acting on an invitation that is not
// pending.
func stateError(s invite.State) error {
	switch s.Kind {
	case invite.Accepted:
		return proto.ErrInvitationAccepted
	case invite.Revoked:
		return proto.ErrInvitationRevoked
	case invite.Expired:
		return proto.ErrInvitationExpired
	default:
		return nil
	}
}
