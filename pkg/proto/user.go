package proto

import (
	"time"

	"github.com/charmbracelet/roster/pkg/access"
)

// Profile is the profile of a user.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrganizationMembership is one entry of a membership summary.
type OrganizationMembership struct {
	OrganizationID        string      `json:"organizationId"`
	OrganizationName      string      `json:"organizationName"`
	Role                  access.Role `json:"role"`
	JoinedAt              time.Time   `json:"joinedAt"`
	OrganizationCreatedAt time.Time   `json:"organizationCreatedAt"`
}

// MembershipSummary summarizes the memberships of a user.
type MembershipSummary struct {
	TotalOrganizations int                      `json:"totalOrganizations"`
	AdminOf            int                      `json:"adminOf"`
	MemberOf           int                      `json:"memberOf"`
	Organizations      []OrganizationMembership `json:"organizations"`
}
