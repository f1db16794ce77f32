package backend

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/matryer/is"
)

func TestCreateOrganization(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	org, err := e.be.CreateOrganization(e.ctx, alice, "  Acme  ")
	is.NoErr(err)
	is.Equal(org.Name, "Acme")
	is.Equal(org.CreatedByID, alice.UserID)
	is.Equal(org.Role, access.RoleAdmin)
	is.True(org.JoinedAt != nil)
	is.Equal(e.admins(t, org.ID), 1)

	d, err := e.be.Organization(e.ctx, alice, org.ID)
	is.NoErr(err)
	is.Equal(len(d.Members), 1)
	is.Equal(d.Members[0].User.Name, "Alice")
	is.Equal(d.UserRole, access.RoleAdmin)
}

func TestCreateOrganizationValidation(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	nameless := e.user(t, "nameless@example.com", "")

	_, err := e.be.CreateOrganization(e.ctx, alice, "   ")
	isErr(t, err, proto.ErrOrgNameRequired)

	_, err = e.be.CreateOrganization(e.ctx, alice, strings.Repeat("a", 101))
	isErr(t, err, proto.ErrOrgNameTooLong)

	_, err = e.be.CreateOrganization(e.ctx, alice, strings.Repeat("a", 100))
	isErr(t, err, nil)

	_, err = e.be.CreateOrganization(e.ctx, nameless, "Acme")
	isErr(t, err, proto.ErrPreconditionFailed)
	isErr(t, err, proto.ErrNameNeededForOrg)

	_, err = e.be.CreateOrganization(e.ctx, proto.Caller{}, "Acme")
	isErr(t, err, proto.ErrUnauthorized)

	_, err = e.be.CreateOrganization(e.ctx, proto.Caller{UserID: "ghost"}, "Acme")
	isErr(t, err, proto.ErrUserNotFound)

	orgs, err := e.be.UserOrganizations(e.ctx, nameless)
	is.New(t).NoErr(err)
	is.New(t).Equal(len(orgs), 0)
}

func TestOrganizationVisibility(t *testing.T) {
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")

	_, err := e.be.Organization(e.ctx, bob, org.ID)
	isErr(t, err, proto.ErrForbidden)
	isErr(t, err, proto.ErrNotOrgMember)

	_, err = e.be.Organization(e.ctx, alice, "missing")
	isErr(t, err, proto.ErrForbidden)
}

func TestOrganizationMembersOrdered(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	carol := e.user(t, "carol@example.com", "Carol")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)
	e.join(t, alice, carol, org.ID)

	d, err := e.be.Organization(e.ctx, carol, org.ID)
	is.NoErr(err)
	is.Equal(d.UserRole, access.RoleMember)
	is.Equal(len(d.Members), 3)
	is.Equal(d.Members[0].User.ID, alice.UserID)
	is.Equal(d.Members[1].User.ID, bob.UserID)
	is.Equal(d.Members[2].User.Email, "carol@example.com")
}

func TestUpdateOrganizationName(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)

	_, err := e.be.UpdateOrganizationName(e.ctx, bob, org.ID, "Bobco")
	isErr(t, err, proto.ErrAdminToRename)

	_, err = e.be.UpdateOrganizationName(e.ctx, alice, org.ID, "")
	isErr(t, err, proto.ErrOrgNameRequired)

	e.clock.Advance(time.Hour)
	renamed, err := e.be.UpdateOrganizationName(e.ctx, alice, org.ID, "Acme Corp")
	is.NoErr(err)
	is.Equal(renamed.Name, "Acme Corp")
	is.True(renamed.UpdatedAt.After(org.UpdatedAt))
	is.True(renamed.CreatedAt.Equal(org.CreatedAt))
}

func TestUserOrganizations(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	acme := e.org(t, alice, "Acme")
	globex := e.org(t, bob, "Globex")
	e.join(t, alice, bob, acme.ID)

	orgs, err := e.be.UserOrganizations(e.ctx, bob)
	is.NoErr(err)
	is.Equal(len(orgs), 2)
	// Most recently joined first.
	is.Equal(orgs[0].ID, acme.ID)
	is.Equal(orgs[0].Role, access.RoleMember)
	is.Equal(orgs[1].ID, globex.ID)
	is.Equal(orgs[1].Role, access.RoleAdmin)
}

func TestSoleAdminCannotLeave(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	org := e.org(t, alice, "Acme")

	err := e.be.LeaveOrganization(e.ctx, alice, org.ID)
	isErr(t, err, proto.ErrPreconditionFailed)
	isErr(t, err, proto.ErrCannotLeaveLastAdmin)
	is.Equal(e.admins(t, org.ID), 1)
}

func TestLeaveOrganization(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	carol := e.user(t, "carol@example.com", "Carol")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)

	err := e.be.LeaveOrganization(e.ctx, carol, org.ID)
	isErr(t, err, proto.ErrNotFound)
	isErr(t, err, proto.ErrNotOrgMemberToLeave)

	is.NoErr(e.be.LeaveOrganization(e.ctx, bob, org.ID))
	_, err = e.be.Organization(e.ctx, bob, org.ID)
	isErr(t, err, proto.ErrForbidden)

	// An admin can leave once another admin exists.
	e.join(t, alice, carol, org.ID)
	_, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, e.memberID(t, alice, org.ID, carol.UserID), access.RoleAdmin)
	is.NoErr(err)
	is.NoErr(e.be.LeaveOrganization(e.ctx, alice, org.ID))
	is.Equal(e.admins(t, org.ID), 1)
}

func TestDemoteScenario(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	carol := e.user(t, "carol@example.com", "Carol")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, carol, org.ID)

	carolID := e.memberID(t, alice, org.ID, carol.UserID)
	m, err := e.be.ChangeMemberRole(e.ctx, alice, org.ID, carolID, access.RoleAdmin)
	is.NoErr(err)
	is.Equal(m.Role, access.RoleAdmin)
	is.Equal(e.admins(t, org.ID), 2)

	m, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, carolID, access.RoleMember)
	is.NoErr(err)
	is.Equal(m.Role, access.RoleMember)
	is.Equal(m.User.Name, "Carol")

	aliceID := e.memberID(t, alice, org.ID, alice.UserID)
	_, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, aliceID, access.RoleMember)
	isErr(t, err, proto.ErrPreconditionFailed)
	isErr(t, err, proto.ErrCannotDemoteLastAdmin)
	is.Equal(e.admins(t, org.ID), 1)
}

func TestChangeMemberRole(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	other := e.org(t, bob, "Globex")
	e.join(t, alice, bob, org.ID)
	bobID := e.memberID(t, alice, org.ID, bob.UserID)
	aliceID := e.memberID(t, alice, org.ID, alice.UserID)

	_, err := e.be.ChangeMemberRole(e.ctx, bob, org.ID, aliceID, access.RoleMember)
	isErr(t, err, proto.ErrAdminToChangeRole)

	_, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, "missing", access.RoleAdmin)
	isErr(t, err, proto.ErrMembershipNotFound)

	// Memberships of other organizations are not visible.
	_, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, e.memberID(t, bob, other.ID, bob.UserID), access.RoleMember)
	isErr(t, err, proto.ErrMembershipNotFound)

	_, err = e.be.ChangeMemberRole(e.ctx, alice, org.ID, bobID, access.Role("OWNER"))
	isErr(t, err, proto.ErrInvalidRole)

	// Same role is a no-op.
	m, err := e.be.ChangeMemberRole(e.ctx, alice, org.ID, bobID, access.RoleMember)
	is.NoErr(err)
	is.Equal(m.Role, access.RoleMember)
}

func TestRemoveMember(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	carol := e.user(t, "carol@example.com", "Carol")
	org := e.org(t, alice, "Acme")
	other := e.org(t, carol, "Globex")
	e.join(t, alice, bob, org.ID)
	bobID := e.memberID(t, alice, org.ID, bob.UserID)
	aliceID := e.memberID(t, alice, org.ID, alice.UserID)

	err := e.be.RemoveMember(e.ctx, bob, org.ID, aliceID)
	isErr(t, err, proto.ErrForbidden)
	isErr(t, err, proto.ErrAdminToRemove)

	err = e.be.RemoveMember(e.ctx, alice, org.ID, aliceID)
	isErr(t, err, proto.ErrBadRequest)
	isErr(t, err, proto.ErrCannotRemoveSelf)

	err = e.be.RemoveMember(e.ctx, alice, org.ID, e.memberID(t, carol, other.ID, carol.UserID))
	isErr(t, err, proto.ErrNotFound)

	err = e.be.RemoveMember(e.ctx, alice, org.ID, "missing")
	isErr(t, err, proto.ErrMembershipNotFound)

	is.NoErr(e.be.RemoveMember(e.ctx, alice, org.ID, bobID))
	err = e.be.RemoveMember(e.ctx, alice, org.ID, bobID)
	isErr(t, err, proto.ErrMembershipNotFound)

	d, err := e.be.Organization(e.ctx, alice, org.ID)
	is.NoErr(err)
	is.Equal(len(d.Members), 1)
}

func TestRemoveAdmin(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)
	bobID := e.memberID(t, alice, org.ID, bob.UserID)
	_, err := e.be.ChangeMemberRole(e.ctx, alice, org.ID, bobID, access.RoleAdmin)
	is.NoErr(err)

	// Bob removes Alice, leaving Bob as the only admin.
	is.NoErr(e.be.RemoveMember(e.ctx, bob, org.ID, e.memberID(t, bob, org.ID, alice.UserID)))
	is.Equal(e.admins(t, org.ID), 1)

	err = e.be.LeaveOrganization(e.ctx, bob, org.ID)
	isErr(t, err, proto.ErrCannotLeaveLastAdmin)
}

// Every admin-reducing operation that would leave an organization without
// an admin fails, whatever the order they are attempted in.
func TestAdminInvariant(t *testing.T) {
	e := setup(t)

	users := []proto.Caller{
		e.user(t, "a@example.com", "A"),
		e.user(t, "b@example.com", "B"),
		e.user(t, "c@example.com", "C"),
	}
	org := e.org(t, users[0], "Acme")
	for _, u := range users[1:] {
		e.join(t, users[0], u, org.ID)
	}
	for _, u := range users[1:] {
		if _, err := e.be.ChangeMemberRole(e.ctx, users[0], org.ID, e.memberID(t, users[0], org.ID, u.UserID), access.RoleAdmin); err != nil {
			t.Fatal(err)
		}
	}

	// Each admin tries to demote every admin, including themself, then
	// tries to leave.
	for round := 0; round < 2; round++ {
		for _, actor := range users {
			for _, target := range users {
				d, err := e.be.Organization(e.ctx, actor, org.ID)
				if err != nil {
					continue
				}
				for _, m := range d.Members {
					if m.User.ID != target.UserID {
						continue
					}
					_, err := e.be.ChangeMemberRole(e.ctx, actor, org.ID, m.ID, access.RoleMember)
					if err != nil && !isAny(err, proto.ErrForbidden, proto.ErrPreconditionFailed) {
						t.Fatalf("unexpected error: %v", err)
					}
					if n := e.admins(t, org.ID); n < 1 {
						t.Fatalf("organization has %d admins", n)
					}
				}
			}
			err := e.be.LeaveOrganization(e.ctx, actor, org.ID)
			if err != nil && !isAny(err, proto.ErrNotFound, proto.ErrPreconditionFailed) {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := e.admins(t, org.ID); n < 1 {
				t.Fatalf("organization has %d admins", n)
			}
		}
	}

	is.New(t).Equal(e.admins(t, org.ID), 1)
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestConcurrentDemotions(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)
	bobID := e.memberID(t, alice, org.ID, bob.UserID)
	aliceID := e.memberID(t, alice, org.ID, alice.UserID)
	_, err := e.be.ChangeMemberRole(e.ctx, alice, org.ID, bobID, access.RoleAdmin)
	is.NoErr(err)

	// Both admins demote the other at the same time.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = e.be.ChangeMemberRole(e.ctx, alice, org.ID, bobID, access.RoleMember)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = e.be.ChangeMemberRole(e.ctx, bob, org.ID, aliceID, access.RoleMember)
	}()
	wg.Wait()

	is.Equal(e.admins(t, org.ID), 1)
	is.True(errs[0] != nil || errs[1] != nil)
	is.True(errs[0] == nil || errs[1] == nil)
}
