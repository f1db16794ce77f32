// Package access defines organization membership roles and the rules that
// keep every organization governed by at least one admin.
package access

import (
	"encoding"
	"errors"
	"strings"
)

// Role is the role a member holds within an organization.
type Role string

const (
	// RoleMember grants membership without management rights.
	RoleMember Role = "MEMBER"

	// RoleAdmin grants full management rights over the organization.
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ErrInvalidRole is returned when an invalid role is provided.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole parses a role string. Parsing is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}

	return r, nil
}

var (
	_ encoding.TextMarshaler   = Role("")
	_ encoding.TextUnmarshaler = (*Role)(nil)
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = role

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() (text []byte, err error) {
	if !r.IsValid() {
		return nil, ErrInvalidRole
	}
	return []byte(r), nil
}
