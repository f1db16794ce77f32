package migrate

import (
	"context"
	"testing"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/test"
	"github.com/matryer/is"
)

func TestMigrate(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	is.NoErr(Migrate(ctx, dbx))

	// Running twice is a no-op.
	is.NoErr(Migrate(ctx, dbx))

	var version int64
	is.NoErr(dbx.Get(&version, "SELECT MAX(version) FROM migrations"))
	is.Equal(version, int64(len(migrations)))

	for _, table := range []string{"users", "organizations", "memberships", "invitations", "categories", "notification_deliveries"} {
		is.NoErr(dbx.TransactionContext(ctx, func(tx *db.Tx) error {
			if !hasTable(tx, table) {
				t.Errorf("missing table %q", table)
			}
			return nil
		}))
	}
}

func TestRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	is.NoErr(Migrate(ctx, dbx))
	is.NoErr(Rollback(ctx, dbx))

	is.NoErr(dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		is.True(!hasTable(tx, "notification_deliveries"))
		is.True(hasTable(tx, "memberships"))
		return nil
	}))
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"create tables":           "create_tables",
		"notification deliveries": "notification_deliveries",
		"CreateTables":            "create_tables",
	} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) => %q, want %q", in, got, want)
		}
	}
}
