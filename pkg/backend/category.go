package backend

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/google/uuid"
)

func categoryDescription(desc string) (sql.NullString, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return sql.NullString{}, proto.ErrDescriptionTooLong
	}
	return sql.NullString{String: desc, Valid: desc != ""}, nil
}

func categoryConflict(err error) error {
	err = db.WrapError(err)
	if errors.Is(err, db.ErrDuplicateKey) {
		return proto.ErrCategoryExists
	}
	return err
}

// Categories returns the categories of an organization ordered by name.
func (b *Backend) Categories(ctx context.Context, c proto.Caller, org string) ([]proto.Category, error) {
	if err := authenticated(c); err != nil {
		return nil, err
	}

	var cats []models.Category
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.membership(ctx, tx, c, org, proto.ErrNotOrgMember); err != nil {
			return err
		}

		var err error
		cats, err = b.store.ListCategories(ctx, tx, org)
		return db.WrapError(err)
	}); err != nil {
		return nil, err
	}

	res := make([]proto.Category, len(cats))
	for i, cat := range cats {
		res[i] = toCategory(cat)
	}
	return res, nil
}

// Category returns a category of an organization the caller belongs to.
func (b *Backend) Category(ctx context.Context, c proto.Caller, id string) (proto.Category, error) {
	if err := authenticated(c); err != nil {
		return proto.Category{}, err
	}

	cat, err := b.store.GetCategoryByID(ctx, b.db, id)
	if err != nil {
		return proto.Category{}, notFound(err, proto.ErrCategoryNotFound)
	}

	if _, err := b.membership(ctx, b.db, c, cat.OrganizationID, proto.ErrNotOrgMember); err != nil {
		return proto.Category{}, err
	}

	return toCategory(cat), nil
}

// CreateCategory creates a category in an organization.
func (b *Backend) CreateCategory(ctx context.Context, c proto.Caller, org string, opts proto.CategoryOptions) (proto.Category, error) {
	if err := authenticated(c); err != nil {
		return proto.Category{}, err
	}

	var name, desc string
	if opts.Name != nil {
		name = *opts.Name
	}
	if opts.Description != nil {
		desc = *opts.Description
	}

	name, err := validateName(name, proto.ErrCategoryNameRequired, proto.ErrCategoryNameTooLong)
	if err != nil {
		return proto.Category{}, err
	}
	description, err := categoryDescription(desc)
	if err != nil {
		return proto.Category{}, err
	}

	now := b.clock()
	cat := models.Category{
		ID:             uuid.NewString(),
		OrganizationID: org,
		Name:           name,
		Description:    description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.admin(ctx, tx, c, org, proto.ErrAdminToCreateCategory); err != nil {
			return err
		}

		return categoryConflict(b.store.CreateCategory(ctx, tx, cat))
	}); err != nil {
		return proto.Category{}, err
	}

	return toCategory(cat), nil
}

// UpdateCategory updates the fields set in opts.
func (b *Backend) UpdateCategory(ctx context.Context, c proto.Caller, id string, opts proto.CategoryOptions) (proto.Category, error) {
	if err := authenticated(c); err != nil {
		return proto.Category{}, err
	}

	var cat models.Category
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		cat, err = b.store.GetCategoryByID(ctx, tx, id)
		if err != nil {
			return notFound(err, proto.ErrCategoryNotFound)
		}

		if _, err := b.admin(ctx, tx, c, cat.OrganizationID, proto.ErrAdminToUpdateCategory); err != nil {
			return err
		}

		if opts.Name != nil {
			cat.Name, err = validateName(*opts.Name, proto.ErrCategoryNameRequired, proto.ErrCategoryNameTooLong)
			if err != nil {
				return err
			}
		}
		if opts.Description != nil {
			cat.Description, err = categoryDescription(*opts.Description)
			if err != nil {
				return err
			}
		}

		cat.UpdatedAt = b.clock()
		return categoryConflict(b.store.UpdateCategory(ctx, tx, cat))
	}); err != nil {
		return proto.Category{}, err
	}

	return toCategory(cat), nil
}

// DeleteCategory deletes a category.
func (b *Backend) DeleteCategory(ctx context.Context, c proto.Caller, id string) error {
	if err := authenticated(c); err != nil {
		return err
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		cat, err := b.store.GetCategoryByID(ctx, tx, id)
		if err != nil {
			return notFound(err, proto.ErrCategoryNotFound)
		}

		if _, err := b.admin(ctx, tx, c, cat.OrganizationID, proto.ErrAdminToDeleteCategory); err != nil {
			return err
		}

		return notFound(b.store.DeleteCategory(ctx, tx, id), proto.ErrCategoryNotFound)
	})
}
