package database

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/store"
)

type userStore struct{}

var _ store.UserStore = (*userStore)(nil)

// CreateUser implements store.UserStore.
func (*userStore) CreateUser(ctx context.Context, tx db.Handler, user models.User) error {
	query := tx.Rebind(`INSERT INTO users (id, name, email, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?);`)
	_, err := tx.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.CreatedAt, user.UpdatedAt)
	return err //nolint:wrapcheck
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, tx db.Handler, id string) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindUserByEmail implements store.UserStore.
func (*userStore) FindUserByEmail(ctx context.Context, tx db.Handler, email string) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT * FROM users WHERE email = ?;`)
	err := tx.GetContext(ctx, &m, query, email)
	return m, err //nolint:wrapcheck
}

// ListUsers implements store.UserStore.
func (*userStore) ListUsers(ctx context.Context, tx db.Handler) ([]models.User, error) {
	var m []models.User
	query := tx.Rebind(`SELECT * FROM users ORDER BY created_at ASC, id ASC;`)
	err := tx.SelectContext(ctx, &m, query)
	return m, err //nolint:wrapcheck
}

// SetUserName implements store.UserStore.
func (*userStore) SetUserName(ctx context.Context, tx db.Handler, id, name string, updatedAt time.Time) error {
	query := tx.Rebind(`UPDATE users SET name = ?, updated_at = ? WHERE id = ?;`)
	return execOne(ctx, tx, query, name, updatedAt, id)
}
