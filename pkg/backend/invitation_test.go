package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/invite"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/charmbracelet/roster/pkg/store"
	"github.com/matryer/is"
)

func TestAcceptInvitation(t *testing.T) {
	is := is.New(t)
	e := setup(t, func(cfg *config.Config) {
		cfg.HTTP.PublicURL = "https://roster.example.com"
	})

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")

	inv := e.send(t, alice, org.ID, "bob@example.com")
	is.Equal(inv.State, invite.Pending)
	is.Equal(inv.Organization.Name, "Acme")
	is.Equal(inv.InvitedBy.Name, "Alice")
	is.Equal(inv.InvitedBy.Email, "alice@example.com")
	is.True(inv.ExpiresAt.Equal(inv.CreatedAt.Add(7 * 24 * time.Hour)))

	sent := e.rec.sent()
	is.Equal(len(sent), 1)
	is.Equal(sent[0].InvitationID, inv.ID)
	is.Equal(sent[0].Email, "bob@example.com")
	is.Equal(sent[0].OrganizationName, "Acme")
	is.Equal(sent[0].InviterName, "Alice")
	is.Equal(sent[0].URL, "https://roster.example.com/invitations/"+inv.ID)

	ds, err := e.be.InvitationDeliveries(e.ctx, alice, inv.ID)
	is.NoErr(err)
	is.Equal(len(ds), 1)
	is.Equal(ds[0].Channel, "recorder")
	is.Equal(ds[0].Recipient, "bob@example.com")
	is.Equal(ds[0].Status, 200)
	is.Equal(ds[0].Error, "")

	e.tick()
	acc, err := e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	is.NoErr(err)
	is.Equal(acc.Organization.ID, org.ID)
	is.Equal(acc.Organization.Name, "Acme")
	is.Equal(acc.Role, access.RoleMember)

	d, err := e.be.Organization(e.ctx, bob, org.ID)
	is.NoErr(err)
	is.Equal(len(d.Members), 2)
	is.Equal(d.UserRole, access.RoleMember)

	_, err = e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrInvitationAccepted)

	_, err = e.be.Invitation(e.ctx, inv.ID)
	isErr(t, err, proto.ErrInvitationAccepted)

	invs, err := e.be.OrganizationInvitations(e.ctx, alice, org.ID)
	is.NoErr(err)
	is.Equal(len(invs), 0)
}

func TestAcceptPreconditions(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	_, err := e.be.AcceptInvitation(e.ctx, proto.Caller{}, inv.ID)
	isErr(t, err, proto.ErrUnauthorized)

	_, err = e.be.AcceptInvitation(e.ctx, proto.Caller{UserID: bob.UserID}, inv.ID)
	isErr(t, err, proto.ErrEmailRequiredToAccept)

	_, err = e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrPreconditionFailed)
	isErr(t, err, proto.ErrNameRequiredToAccept)

	_, err = e.be.UpdateUserName(e.ctx, bob, "Bob")
	isErr(t, err, nil)

	_, err = e.be.AcceptInvitation(e.ctx, bob, "missing")
	isErr(t, err, proto.ErrInvitationNotFound)

	_, err = e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, nil)
}

func TestInvitationEmailBinding(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	mallory := e.user(t, "mallory@example.com", "Mallory")
	shouty := e.user(t, "Bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	_, err := e.be.AcceptInvitation(e.ctx, mallory, inv.ID)
	isErr(t, err, proto.ErrForbidden)
	isErr(t, err, proto.ErrInvitationNotForYou)

	// Addresses are compared exactly.
	_, err = e.be.AcceptInvitation(e.ctx, shouty, inv.ID)
	isErr(t, err, proto.ErrInvitationNotForYou)

	// The invitation is still pending.
	got, err := e.be.Invitation(e.ctx, inv.ID)
	is.NoErr(err)
	is.Equal(got.State, invite.Pending)
}

func TestAcceptAlreadyMember(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)

	_, err := e.be.SendInvitation(e.ctx, alice, proto.SendInvitationOptions{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	isErr(t, err, proto.ErrAlreadyMember)

	// Carol joins by other means while her invitation is pending.
	carol := e.user(t, "carol@example.com", "Carol")
	inv := e.send(t, alice, org.ID, "carol@example.com")
	is.NoErr(e.be.store.CreateMembership(e.ctx, e.be.db, models.Membership{
		ID:             "carol-membership",
		UserID:         carol.UserID,
		OrganizationID: org.ID,
		Role:           access.RoleMember,
		JoinedAt:       e.clock.Now(),
	}))

	_, err = e.be.AcceptInvitation(e.ctx, carol, inv.ID)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrAlreadyJoined)

	got, err := e.be.Invitation(e.ctx, inv.ID)
	is.NoErr(err)
	is.Equal(got.State, invite.Pending)
}

func TestRevokeInvitation(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	err := e.be.RevokeInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrAdminToRevoke)

	err = e.be.RevokeInvitation(e.ctx, alice, "missing")
	isErr(t, err, proto.ErrInvitationNotFound)

	e.tick()
	is.NoErr(e.be.RevokeInvitation(e.ctx, alice, inv.ID))

	err = e.be.RevokeInvitation(e.ctx, alice, inv.ID)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrAlreadyRevoked)

	_, err = e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrInvitationRevoked)

	_, err = e.be.Invitation(e.ctx, inv.ID)
	isErr(t, err, proto.ErrInvitationRevoked)

	invs, err := e.be.UserInvitations(e.ctx, bob)
	is.NoErr(err)
	is.Equal(len(invs), 0)

	// A revoked invitation no longer blocks a new one.
	next := e.send(t, alice, org.ID, "bob@example.com")
	is.True(next.ID != inv.ID)
}

func TestRevokeAccepted(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")
	if _, err := e.be.AcceptInvitation(e.ctx, bob, inv.ID); err != nil {
		t.Fatal(err)
	}

	err := e.be.RevokeInvitation(e.ctx, alice, inv.ID)
	isErr(t, err, proto.ErrCannotRevokeAccepted)

	_, err = e.be.ResendInvitation(e.ctx, alice, inv.ID, 0)
	isErr(t, err, proto.ErrCannotResendAccepted)
}

func TestDuplicatePendingInvitation(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	_, err := e.be.SendInvitation(e.ctx, alice, proto.SendInvitationOptions{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrPendingInvitation)

	// Once expired, the old invitation no longer blocks a new one.
	e.clock.Advance(7 * 24 * time.Hour)
	_, err = e.be.Invitation(e.ctx, inv.ID)
	isErr(t, err, proto.ErrInvitationExpired)

	next := e.send(t, alice, org.ID, "bob@example.com")
	is.Equal(next.State, invite.Pending)

	invs, err := e.be.OrganizationInvitations(e.ctx, alice, org.ID)
	is.NoErr(err)
	is.Equal(len(invs), 2)
	is.Equal(invs[0].ID, next.ID)
	is.Equal(invs[1].ID, inv.ID)
	is.Equal(invs[1].State, invite.Expired)
}

func TestExpiredInvitation(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")

	e.tick()
	inv, err := e.be.SendInvitation(e.ctx, alice, proto.SendInvitationOptions{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
		ExpiresInDays:  1,
	})
	e.be.Wait()
	isErr(t, err, nil)

	e.clock.Advance(24*time.Hour - time.Second)
	_, err = e.be.Invitation(e.ctx, inv.ID)
	isErr(t, err, nil)

	e.tick()
	_, err = e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrInvitationExpired)

	// Expired invitations can still be revoked.
	isErr(t, e.be.RevokeInvitation(e.ctx, alice, inv.ID), nil)
	_, err = e.be.Invitation(e.ctx, inv.ID)
	isErr(t, err, proto.ErrInvitationRevoked)
}

func TestSendInvitationValidation(t *testing.T) {
	e := setup(t, func(cfg *config.Config) {
		cfg.Invitations.AllowedEmails = []string{"*@example.com"}
	})

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)

	cases := []struct {
		name  string
		c     proto.Caller
		email string
		days  int
		err   error
	}{
		{"anonymous", proto.Caller{}, "carol@example.com", 0, proto.ErrAuthenticationRequired},
		{"empty email", alice, "", 0, proto.ErrInvalidEmail},
		{"bad email", alice, "carol", 0, proto.ErrInvalidEmail},
		{"display name", alice, "Carol <carol@example.com>", 0, proto.ErrInvalidEmail},
		{"not allowed", alice, "carol@example.org", 0, proto.ErrEmailNotAllowed},
		{"too short", alice, "carol@example.com", -1, proto.ErrInvalidExpiry},
		{"too long", alice, "carol@example.com", 31, proto.ErrInvalidExpiry},
		{"not admin", bob, "carol@example.com", 0, proto.ErrAdminToInvite},
		{"member", alice, "bob@example.com", 0, proto.ErrAlreadyMember},
		{"ok", alice, " CAROL@example.com ", 30, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.be.SendInvitation(e.ctx, c.c, proto.SendInvitationOptions{
				OrganizationID: org.ID,
				Email:          c.email,
				ExpiresInDays:  c.days,
			})
			e.be.Wait()
			isErr(t, err, c.err)
		})
	}

	_, err := e.be.SendInvitation(e.ctx, alice, proto.SendInvitationOptions{
		OrganizationID: "missing",
		Email:          "dave@example.com",
	})
	isErr(t, err, proto.ErrForbidden)
}

func TestResendInvitation(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)
	old := e.send(t, alice, org.ID, "carol@example.com")

	_, err := e.be.ResendInvitation(e.ctx, bob, old.ID, 0)
	isErr(t, err, proto.ErrAdminToResend)

	_, err = e.be.ResendInvitation(e.ctx, alice, old.ID, 42)
	isErr(t, err, proto.ErrInvalidExpiry)

	_, err = e.be.ResendInvitation(e.ctx, alice, "missing", 0)
	isErr(t, err, proto.ErrInvitationNotFound)

	e.tick()
	next, err := e.be.ResendInvitation(e.ctx, alice, old.ID, 3)
	is.NoErr(err)
	e.be.Wait()
	is.True(next.ID != old.ID)
	is.Equal(next.Email, old.Email)
	is.Equal(next.Organization.ID, org.ID)
	is.True(next.ExpiresAt.Equal(next.CreatedAt.Add(3 * 24 * time.Hour)))

	_, err = e.be.Invitation(e.ctx, old.ID)
	isErr(t, err, proto.ErrInvitationRevoked)

	// Exactly one pending invitation remains.
	invs, err := e.be.OrganizationInvitations(e.ctx, alice, org.ID)
	is.NoErr(err)
	is.Equal(len(invs), 1)
	is.Equal(invs[0].ID, next.ID)

	// The new invitation was notified too.
	sent := e.rec.sent()
	is.Equal(sent[len(sent)-1].InvitationID, next.ID)

	// A revoked invitation can be resent once nothing else is pending.
	_, err = e.be.ResendInvitation(e.ctx, alice, old.ID, 0)
	isErr(t, err, proto.ErrPendingInvitation)

	is.NoErr(e.be.RevokeInvitation(e.ctx, alice, next.ID))
	again, err := e.be.ResendInvitation(e.ctx, alice, old.ID, 0)
	is.NoErr(err)
	e.be.Wait()
	is.True(again.ID != next.ID)
	is.Equal(again.State, invite.Pending)
}

func TestUserInvitations(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	acme := e.org(t, alice, "Acme")
	globex := e.org(t, alice, "Globex")
	initech := e.org(t, alice, "Initech")

	first := e.send(t, alice, acme.ID, "bob@example.com")
	revoked := e.send(t, alice, globex.ID, "bob@example.com")
	is.NoErr(e.be.RevokeInvitation(e.ctx, alice, revoked.ID))
	last := e.send(t, alice, initech.ID, "bob@example.com")
	e.send(t, alice, initech.ID, "carol@example.com")

	invs, err := e.be.UserInvitations(e.ctx, bob)
	is.NoErr(err)
	is.Equal(len(invs), 2)
	is.Equal(invs[0].ID, last.ID)
	is.Equal(invs[1].ID, first.ID)

	// No email means no invitations.
	invs, err = e.be.UserInvitations(e.ctx, proto.Caller{UserID: bob.UserID})
	is.NoErr(err)
	is.Equal(len(invs), 0)

	e.clock.Advance(8 * 24 * time.Hour)
	invs, err = e.be.UserInvitations(e.ctx, bob)
	is.NoErr(err)
	is.Equal(len(invs), 0)
}

func TestOrganizationInvitationsAdminOnly(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)
	inv := e.send(t, alice, org.ID, "carol@example.com")

	_, err := e.be.OrganizationInvitations(e.ctx, bob, org.ID)
	isErr(t, err, proto.ErrAdminToViewInvitations)

	_, err = e.be.InvitationDeliveries(e.ctx, bob, inv.ID)
	isErr(t, err, proto.ErrAdminToViewInvitations)
}

func TestPublicInvitation(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	_, err := e.be.Invitation(e.ctx, "missing")
	isErr(t, err, proto.ErrNotFound)

	got, err := e.be.Invitation(e.ctx, inv.ID)
	is.NoErr(err)
	is.Equal(got.Email, "bob@example.com")
	is.Equal(got.Organization.Name, "Acme")
	is.Equal(got.InvitedBy.Name, "Alice")
}

func TestNotificationFailure(t *testing.T) {
	is := is.New(t)
	e := setup(t)
	e.rec.err = errors.New("connection refused")

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")

	// The invitation survives a failed delivery.
	inv := e.send(t, alice, org.ID, "bob@example.com")
	_, err := e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	is.NoErr(err)

	ds, err := e.be.InvitationDeliveries(e.ctx, alice, inv.ID)
	is.NoErr(err)
	is.Equal(len(ds), 1)
	is.Equal(ds[0].Status, 500)
	is.Equal(ds[0].Error, "connection refused")
}

func TestPruneDeliveries(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	org := e.org(t, alice, "Acme")
	old := e.send(t, alice, org.ID, "bob@example.com")
	e.clock.Advance(48 * time.Hour)
	recent := e.send(t, alice, org.ID, "carol@example.com")

	_, err := e.be.PruneDeliveries(e.ctx, 0)
	is.True(err != nil)

	n, err := e.be.PruneDeliveries(e.ctx, 24*time.Hour)
	is.NoErr(err)
	is.Equal(n, int64(1))

	ds, err := e.be.InvitationDeliveries(e.ctx, alice, old.ID)
	is.NoErr(err)
	is.Equal(len(ds), 0)

	ds, err = e.be.InvitationDeliveries(e.ctx, alice, recent.ID)
	is.NoErr(err)
	is.Equal(len(ds), 1)
}

// joiningStore inserts a membership for user right after the backend finds
// none, as a concurrent acceptance would.
type joiningStore struct {
	store.Store
	org, user string
	joined    bool
}

func (s *joiningStore) FindMembership(ctx context.Context, h db.Handler, org, user string) (models.Membership, error) {
	m, err := s.Store.FindMembership(ctx, h, org, user)
	if s.joined || org != s.org || user != s.user {
		return m, err
	}
	if !errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
		return m, err
	}

	s.joined = true
	if err := s.Store.CreateMembership(ctx, h, models.Membership{
		ID:             "concurrent-membership",
		UserID:         user,
		OrganizationID: org,
		Role:           access.RoleMember,
		JoinedAt:       time.Now(),
	}); err != nil {
		return m, err
	}
	return m, err
}

func TestAcceptDuplicateMembership(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	inv := e.send(t, alice, org.ID, "bob@example.com")

	js := &joiningStore{Store: e.be.store, org: org.ID, user: bob.UserID}
	e.be.store = js

	e.tick()
	_, err := e.be.AcceptInvitation(e.ctx, bob, inv.ID)
	is.True(js.joined)
	isErr(t, err, proto.ErrConflict)
	isErr(t, err, proto.ErrAlreadyJoined)

	// The transaction rolled back, including the concurrent insert.
	got, err := e.be.Invitation(e.ctx, inv.ID)
	is.NoErr(err)
	is.Equal(got.State, invite.Pending)

	_, err = e.be.store.FindMembership(e.ctx, e.be.db, org.ID, bob.UserID)
	is.True(errors.Is(db.WrapError(err), db.ErrRecordNotFound))
}
