package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*userStore
	*orgStore
	*membershipStore
	*invitationStore
	*categoryStore
	*deliveryStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		userStore:       &userStore{},
		orgStore:        &orgStore{},
		membershipStore: &membershipStore{},
		invitationStore: &invitationStore{},
		categoryStore:   &categoryStore{},
		deliveryStore:   &deliveryStore{},
	}

	return s
}
