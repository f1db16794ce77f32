package backend

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gobwas/glob"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	minExpiryDays        = 1
	maxExpiryDays        = 30
)

// authenticated fails when the caller has no identity.
func authenticated(c proto.Caller) error {
	if c.IsAnonymous() {
		return proto.ErrAuthenticationRequired
	}
	return nil
}

// membership returns the caller's membership in org, or denied when the
// caller is not a member.
func (b *Backend) membership(ctx context.Context, h db.Handler, c proto.Caller, org string, denied error) (models.Membership, error) {
	m, err := b.store.FindMembership(ctx, h, org, c.UserID)
	if err != nil {
		return models.Membership{}, notFound(err, denied)
	}
	return m, nil
}

// admin returns the caller's membership in org, or denied when the caller is
// not an admin of it.
func (b *Backend) admin(ctx context.Context, h db.Handler, c proto.Caller, org string, denied error) (models.Membership, error) {
	m, err := b.membership(ctx, h, c, org, denied)
	if err != nil {
		return m, err
	}
	if !m.Role.IsAdmin() {
		return models.Membership{}, denied
	}
	return m, nil
}

// adminCount returns the live number of admins of org. Callers must use the
// same transaction for the count and the write it guards.
func (b *Backend) adminCount(ctx context.Context, tx *db.Tx, org string) (int, error) {
	n, err := b.store.CountAdmins(ctx, tx, org)
	if err != nil {
		return 0, db.WrapError(err)
	}
	return n, nil
}

// keepAdmin re-validates, after a write and before commit, that org still
// has an admin. A concurrent writer that slipped past the guard makes the
// transaction roll back with failure.
func (b *Backend) keepAdmin(ctx context.Context, tx *db.Tx, org string, failure error) error {
	n, err := b.adminCount(ctx, tx, org)
	if err != nil {
		return err
	}
	if n < 1 {
		b.logger.Warn("admin invariant violated, rolling back", "organization", org)
		return failure
	}
	return nil
}

// user returns a user profile, reading through the cache.
func (b *Backend) user(ctx context.Context, h db.Handler, id string) (models.User, error) {
	if u, ok := b.cache.Get(id); ok {
		return u, nil
	}

	u, err := b.store.GetUserByID(ctx, h, id)
	if err != nil {
		return models.User{}, notFound(err, proto.ErrUserNotFound)
	}

	b.cache.Set(id, u)
	return u, nil
}

// freshUser reads a user profile from the store, bypassing the cache, and
// refreshes the cached copy. Use it for checks that gate a write.
func (b *Backend) freshUser(ctx context.Context, h db.Handler, id string) (models.User, error) {
	u, err := b.store.GetUserByID(ctx, h, id)
	if err != nil {
		return models.User{}, notFound(err, proto.ErrUserNotFound)
	}

	b.cache.Set(id, u)
	return u, nil
}

func hasName(u models.User) bool {
	return u.Name.Valid && strings.TrimSpace(u.Name.String) != ""
}

// validateName trims name and checks its length.
func validateName(name string, required, tooLong error) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", required
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", tooLong
	}
	return name, nil
}

// validateEmail trims email and checks it is a bare address.
func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", proto.ErrInvalidEmail
	}
	return email, nil
}

// expiryDays resolves the validity of an invitation in days. Zero means the
// configured default.
func (b *Backend) expiryDays(days int) (int, error) {
	if days == 0 {
		days = b.cfg.Invitations.DefaultExpiryDays
	}
	if days < minExpiryDays || days > maxExpiryDays {
		return 0, proto.ErrInvalidExpiry
	}
	return days, nil
}

// emailPolicy restricts the addresses invitations can be sent to.
type emailPolicy struct {
	patterns []glob.Glob
}

func newEmailPolicy(patterns []string) (*emailPolicy, error) {
	p := &emailPolicy{}
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid email pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, g)
	}
	return p, nil
}

// Allowed reports whether email matches one of the patterns. Every address
// is allowed when there are no patterns.
func (p *emailPolicy) Allowed(email string) bool {
	if len(p.patterns) == 0 {
		return true
	}
	email = strings.ToLower(email)
	for _, g := range p.patterns {
		if g.Match(email) {
			return true
		}
	}
	return false
}

// notFound wraps a store error, replacing a missing record with typed.
func notFound(err error, typed error) error {
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return typed
	}
	return err
}
