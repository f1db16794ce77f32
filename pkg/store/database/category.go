package database

import (
	"context"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/store"
)

var _ store.CategoryStore = (*categoryStore)(nil)

type categoryStore struct{}

// CreateCategory implements store.CategoryStore.
func (*categoryStore) CreateCategory(ctx context.Context, h db.Handler, c models.Category) error {
	query := h.Rebind(`
		INSERT INTO
		  categories (id, organization_id, name, description, created_at, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, c.ID, c.OrganizationID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetCategoryByID implements store.CategoryStore.
func (*categoryStore) GetCategoryByID(ctx context.Context, h db.Handler, id string) (models.Category, error) {
	var m models.Category
	err := h.GetContext(ctx, &m, h.Rebind(`SELECT * FROM categories WHERE id = ?;`), id)
	return m, err
}

// ListCategories implements store.CategoryStore.
func (*categoryStore) ListCategories(ctx context.Context, h db.Handler, org string) ([]models.Category, error) {
	var m []models.Category
	query := h.Rebind(`
		SELECT
		  *
		FROM
		  categories
		WHERE
		  organization_id = ?
		ORDER BY
		  name ASC;
	`)
	err := h.SelectContext(ctx, &m, query, org)
	return m, err
}

// UpdateCategory implements store.CategoryStore.
func (*categoryStore) UpdateCategory(ctx context.Context, h db.Handler, c models.Category) error {
	query := h.Rebind(`
		UPDATE categories
		SET
		  name = ?,
		  description = ?,
		  updated_at = ?
		WHERE
		  id = ?;
	`)
	return execOne(ctx, h, query, c.Name, c.Description, c.UpdatedAt, c.ID)
}

// DeleteCategory implements store.CategoryStore.
func (*categoryStore) DeleteCategory(ctx context.Context, h db.Handler, id string) error {
	return execOne(ctx, h, h.Rebind(`DELETE FROM categories WHERE id = ?;`), id)
}
