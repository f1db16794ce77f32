// Package invite derives the lifecycle state of an invitation from its
// stored timestamps.
package invite

import (
	"database/sql"
	"encoding"
	"fmt"
	"time"

	"github.com/charmbracelet/roster/pkg/db/models"
)

// Kind is the discriminant of an invitation State.
type Kind int8

const (
	// Pending invitations can still be accepted, revoked or resent.
	Pending Kind = iota
	// Accepted invitations turned into a membership.
	Accepted
	// Revoked invitations were withdrawn by an admin or replaced by a resend.
	Revoked
	// Expired invitations passed their expiry without being answered.
	Expired
)

var kindStrings = map[Kind]string{
	Pending:  "pending",
	Accepted: "accepted",
	Revoked:  "revoked",
	Expired:  "expired",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown"
}

var (
	_ encoding.TextMarshaler   = Kind(0)
	_ encoding.TextUnmarshaler = (*Kind)(nil)
)

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, s := range kindStrings {
		if s == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown invitation state: %q", text)
}

// State is the effective state of an invitation. At is set for the Accepted
// and Revoked kinds and holds the time of the transition.
type State struct {
	Kind Kind
	At   time.Time
}

// IsPending reports whether the invitation can still be acted upon.
func (s State) IsPending() bool {
	return s.Kind == Pending
}

// IsTerminal reports whether the invitation reached a final state.
func (s State) IsTerminal() bool {
	return !s.IsPending()
}

// String returns the string representation of the state.
func (s State) String() string {
	return s.Kind.String()
}

// Derive computes the state from the stored timestamps at the given time.
// Acceptance takes precedence over revocation, and both take precedence
// over expiry.
func Derive(acceptedAt, revokedAt, expiresAt sql.NullTime, now time.Time) State {
	switch {
	case acceptedAt.Valid:
		return State{Kind: Accepted, At: acceptedAt.Time}
	case revokedAt.Valid:
		return State{Kind: Revoked, At: revokedAt.Time}
	case expiresAt.Valid && !expiresAt.Time.After(now):
		return State{Kind: Expired}
	default:
		return State{Kind: Pending}
	}
}

// Of returns the state of inv at the given time.
func Of(inv models.Invitation, now time.Time) State {
	return Derive(inv.AcceptedAt, inv.RevokedAt, inv.ExpiresAt, now)
}
