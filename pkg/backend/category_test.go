package backend

import (
	"strings"
	"testing"

	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/matryer/is"
)

func str(s string) *string { return &s }

func TestCategories(t *testing.T) {
	is := is.New(t)
	e := setup(t)

	alice := e.user(t, "alice@example.com", "Alice")
	bob := e.user(t, "bob@example.com", "Bob")
	carol := e.user(t, "carol@example.com", "Carol")
	org := e.org(t, alice, "Acme")
	e.join(t, alice, bob, org.ID)

	_, err := e.be.CreateCategory(e.ctx, bob, org.ID, proto.CategoryOptions{Name: str("Ops")})
	isErr(t, err, proto.ErrAdminToCreateCategory)

	_, err = e.be.CreateCategory(e.ctx, alice, org.ID, proto.CategoryOptions{})
	isErr(t, err, proto.ErrCategoryNameRequired)

	_, err = e.be.CreateCategory(e.ctx, alice, org.ID, proto.CategoryOptions{
		Name:        str("Ops"),
		Description: str(strings.Repeat("x", 501)),
	})
	isErr(t, err, proto.ErrDescriptionTooLong)

	ops, err := e.be.CreateCategory(e.ctx, alice, org.ID, proto.CategoryOptions{
		Name:        str("Ops"),
		Description: str("Operations"),
	})
	is.NoErr(err)
	_, err = e.be.CreateCategory(e.ctx, alice, org.ID, proto.CategoryOptions{Name: str("Dev")})
	is.NoErr(err)

	_, err = e.be.CreateCategory(e.ctx, alice, org.ID, proto.CategoryOptions{Name: str("Ops")})
	isErr(t, err, proto.ErrCategoryExists)

	cats, err := e.be.Categories(e.ctx, bob, org.ID)
	is.NoErr(err)
	is.Equal(len(cats), 2)
	is.Equal(cats[0].Name, "Dev")
	is.Equal(cats[1].Name, "Ops")

	_, err = e.be.Categories(e.ctx, carol, org.ID)
	isErr(t, err, proto.ErrNotOrgMember)

	_, err = e.be.Category(e.ctx, carol, ops.ID)
	isErr(t, err, proto.ErrForbidden)

	_, err = e.be.UpdateCategory(e.ctx, bob, ops.ID, proto.CategoryOptions{Name: str("Infra")})
	isErr(t, err, proto.ErrAdminToUpdateCategory)

	_, err = e.be.UpdateCategory(e.ctx, alice, ops.ID, proto.CategoryOptions{Name: str("Dev")})
	isErr(t, err, proto.ErrCategoryExists)

	e.tick()
	upd, err := e.be.UpdateCategory(e.ctx, alice, ops.ID, proto.CategoryOptions{Description: str("")})
	is.NoErr(err)
	is.Equal(upd.Name, "Ops")
	is.Equal(upd.Description, "")
	is.True(upd.UpdatedAt.After(ops.UpdatedAt))

	err = e.be.DeleteCategory(e.ctx, bob, ops.ID)
	isErr(t, err, proto.ErrAdminToDeleteCategory)

	is.NoErr(e.be.DeleteCategory(e.ctx, alice, ops.ID))

	_, err = e.be.Category(e.ctx, alice, ops.ID)
	isErr(t, err, proto.ErrCategoryNotFound)
}
