package backend

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/notify"
	"github.com/charmbracelet/roster/pkg/store"
	"github.com/charmbracelet/roster/pkg/task"
)

// Backend is the Roster backend that handles users, organizations,
// memberships and invitations.
type Backend struct {
	ctx       context.Context
	cfg       *config.Config
	db        *db.DB
	store     store.Store
	logger    *log.Logger
	cache     *cache
	manager   *task.Manager
	notifiers []notify.Notifier
	emails    *emailPolicy
	now       func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the clock used to stamp records and to evaluate invitation
// expiry.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// WithNotifiers replaces the notification channels from the configuration.
func WithNotifiers(ns ...notify.Notifier) Option {
	return func(b *Backend) {
		b.notifiers = ns
	}
}

// New returns a new Roster backend.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store, opts ...Option) (*Backend, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:     ctx,
		cfg:     cfg,
		db:      db,
		store:   st,
		logger:  logger,
		manager: task.NewManager(ctx),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.notifiers == nil {
		ns, err := notify.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		b.notifiers = ns
	}

	emails, err := newEmailPolicy(cfg.Invitations.AllowedEmails)
	if err != nil {
		return nil, err
	}
	b.emails = emails
	b.cache = newCache(1000, time.Minute)

	return b, nil
}

// Wait blocks until pending notifications are delivered.
func (b *Backend) Wait() {
	b.manager.Wait()
}

func (b *Backend) clock() time.Time {
	return b.now().UTC()
}
