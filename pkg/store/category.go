package store

import (
	"context"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
)

// CategoryStore is a store for organization categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, h db.Handler, c models.Category) error
	GetCategoryByID(ctx context.Context, h db.Handler, id string) (models.Category, error)
	ListCategories(ctx context.Context, h db.Handler, org string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, h db.Handler, c models.Category) error
	DeleteCategory(ctx context.Context, h db.Handler, id string) error
}
