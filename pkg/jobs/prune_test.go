package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/db/migrate"
	"github.com/charmbracelet/roster/pkg/notify"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/charmbracelet/roster/pkg/store/database"
	"github.com/charmbracelet/roster/pkg/test"
	"github.com/matryer/is"
)

func TestRegistered(t *testing.T) {
	is := is.New(t)
	j, ok := List()["prune-deliveries"]
	is.True(ok)

	is.Equal(j.Runner.Spec(context.TODO()), "")

	cfg := config.DefaultConfig()
	cfg.Jobs.PruneDeliveries = "@hourly"
	is.Equal(j.Runner.Spec(config.WithContext(context.TODO(), cfg)), "@hourly")
}

func TestPruneDeliveries(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	is.NoErr(migrate.Migrate(ctx, dbx))

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Jobs.DeliveryRetention = "30d"
	ctx = config.WithContext(ctx, cfg)

	var mu sync.Mutex
	now := time.Now().Add(-60 * 24 * time.Hour)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	be, err := backend.New(ctx, cfg, dbx, database.New(ctx, dbx),
		backend.WithClock(clock), backend.WithNotifiers(notify.Log{}))
	is.NoErr(err)
	ctx = backend.WithContext(ctx, be)

	u, err := be.CreateUser(ctx, "alice@example.com", "Alice")
	is.NoErr(err)
	alice := proto.Caller{UserID: u.ID, Email: u.Email}
	org, err := be.CreateOrganization(ctx, alice, "Acme")
	is.NoErr(err)
	inv, err := be.SendInvitation(ctx, alice, proto.SendInvitationOptions{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	is.NoErr(err)
	be.Wait()

	ds, err := be.InvitationDeliveries(ctx, alice, inv.ID)
	is.NoErr(err)
	is.Equal(len(ds), 1)

	mu.Lock()
	now = time.Now()
	mu.Unlock()

	List()["prune-deliveries"].Runner.Func(ctx)()

	ds, err = be.InvitationDeliveries(ctx, alice, inv.ID)
	is.NoErr(err)
	is.Equal(len(ds), 0)
}
