package main

import (
	"fmt"

	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:                "migrate",
	Short:              "Migrate the database to the latest version",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		c.PrintErrln("Database migrated")
		return nil
	},
}
