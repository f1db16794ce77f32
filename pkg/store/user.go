package store

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
)

// UserStore is a store for users.
type UserStore interface {
	CreateUser(ctx context.Context, h db.Handler, user models.User) error
	GetUserByID(ctx context.Context, h db.Handler, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	ListUsers(ctx context.Context, h db.Handler) ([]models.User, error)
	SetUserName(ctx context.Context, h db.Handler, id, name string, updatedAt time.Time) error
}
