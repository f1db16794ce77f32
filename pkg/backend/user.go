package backend

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/google/uuid"
)

// CreateUser provisions a user. Users normally come from the identity
// provider; name and email may both be empty.
func (b *Backend) CreateUser(ctx context.Context, email, name string) (proto.Profile, error) {
	var err error
	u := models.User{ID: uuid.NewString()}

	if strings.TrimSpace(email) != "" {
		email, err = validateEmail(email)
		if err != nil {
			return proto.Profile{}, err
		}
		u.Email = sql.NullString{String: email, Valid: true}
	}

	if strings.TrimSpace(name) != "" {
		name, err = validateName(name, proto.ErrNameRequired, proto.ErrNameTooLong)
		if err != nil {
			return proto.Profile{}, err
		}
		u.Name = sql.NullString{String: name, Valid: true}
	}

	u.CreatedAt = b.clock()
	u.UpdatedAt = u.CreatedAt
	if err := b.store.CreateUser(ctx, b.db, u); err != nil {
		if err := db.WrapError(err); errors.Is(err, db.ErrDuplicateKey) {
			return proto.Profile{}, proto.ErrUserEmailExists
		}
		return proto.Profile{}, db.WrapError(err)
	}

	b.logger.Info("user created", "user", u.ID)
	return toProfile(u), nil
}

// UserByID returns a user.
func (b *Backend) UserByID(ctx context.Context, id string) (proto.Profile, error) {
	u, err := b.user(ctx, b.db, id)
	if err != nil {
		return proto.Profile{}, err
	}
	return toProfile(u), nil
}

// UserByEmail returns the user with the given email address.
func (b *Backend) UserByEmail(ctx context.Context, email string) (proto.Profile, error) {
	u, err := b.store.FindUserByEmail(ctx, b.db, strings.TrimSpace(email))
	if err != nil {
		return proto.Profile{}, notFound(err, proto.ErrUserNotFound)
	}
	return toProfile(u), nil
}

// Users returns every user.
func (b *Backend) Users(ctx context.Context) ([]proto.Profile, error) {
	us, err := b.store.ListUsers(ctx, b.db)
	if err != nil {
		return nil, db.WrapError(err)
	}

	res := make([]proto.Profile, len(us))
	for i, u := range us {
		res[i] = toProfile(u)
	}
	return res, nil
}

// Caller returns the identity of a user as seen by the operations.
func (b *Backend) Caller(ctx context.Context, id string) (proto.Caller, error) {
	u, err := b.user(ctx, b.db, id)
	if err != nil {
		return proto.Caller{}, err
	}
	return proto.Caller{UserID: u.ID, Email: u.Email.String}, nil
}

// Profile returns the caller's profile.
func (b *Backend) Profile(ctx context.Context, c proto.Caller) (proto.Profile, error) {
	if err := authenticated(c); err != nil {
		return proto.Profile{}, err
	}
	u, err := b.freshUser(ctx, b.db, c.UserID)
	if err != nil {
		return proto.Profile{}, err
	}
	return toProfile(u), nil
}

// UpdateUserName sets the caller's display name.
func (b *Backend) UpdateUserName(ctx context.Context, c proto.Caller, name string) (proto.Profile, error) {
	if err := authenticated(c); err != nil {
		return proto.Profile{}, err
	}

	name, err := validateName(name, proto.ErrNameRequired, proto.ErrNameTooLong)
	if err != nil {
		return proto.Profile{}, err
	}

	if err := b.store.SetUserName(ctx, b.db, c.UserID, name, b.clock()); err != nil {
		return proto.Profile{}, notFound(err, proto.ErrUserNotFound)
	}

	u, err := b.freshUser(ctx, b.db, c.UserID)
	if err != nil {
		return proto.Profile{}, err
	}
	return toProfile(u), nil
}

// NeedsOnboarding reports whether the caller still has to set a name.
func (b *Backend) NeedsOnboarding(ctx context.Context, c proto.Caller) (bool, error) {
	if err := authenticated(c); err != nil {
		return false, err
	}

	u, err := b.freshUser(ctx, b.db, c.UserID)
	if err != nil {
		return false, err
	}
	return !hasName(u), nil
}

// MembershipSummary summarizes the organizations the caller belongs to.
func (b *Backend) MembershipSummary(ctx context.Context, c proto.Caller) (proto.MembershipSummary, error) {
	if err := authenticated(c); err != nil {
		return proto.MembershipSummary{}, err
	}

	ms, err := b.store.ListUserMemberships(ctx, b.db, c.UserID)
	if err != nil {
		return proto.MembershipSummary{}, db.WrapError(err)
	}

	s := proto.MembershipSummary{
		TotalOrganizations: len(ms),
		Organizations:      make([]proto.OrganizationMembership, len(ms)),
	}
	for i, m := range ms {
		if m.Role.IsAdmin() {
			s.AdminOf++
		} else {
			s.MemberOf++
		}
		s.Organizations[i] = proto.OrganizationMembership{
			OrganizationID:        m.OrganizationID,
			OrganizationName:      m.OrganizationName,
			Role:                  m.Role,
			JoinedAt:              m.JoinedAt,
			OrganizationCreatedAt: m.OrganizationCreatedAt,
		}
	}
	return s, nil
}
