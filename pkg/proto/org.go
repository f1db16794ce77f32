package proto

import (
	"time"

	"github.com/charmbracelet/roster/pkg/access"
)

// Organization is an organization as seen by one of its members.
type Organization struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CreatedByID string      `json:"createdById"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Role        access.Role `json:"role,omitempty"`
	JoinedAt    *time.Time  `json:"joinedAt,omitempty"`
}

// UserSummary is the public part of a user profile.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Member is a membership together with the member's profile.
type Member struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organizationId"`
	Role           access.Role `json:"role"`
	JoinedAt       time.Time   `json:"joinedAt"`
	User           UserSummary `json:"user"`
}

// OrganizationDetail is an organization with its members and the caller's
// role.
type OrganizationDetail struct {
	Organization
	Members  []Member    `json:"members"`
	UserRole access.Role `json:"userRole"`
}
