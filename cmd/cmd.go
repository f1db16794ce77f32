// Package cmd holds the helpers shared by the roster commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/charmbracelet/roster/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitBackendContext opens the database and attaches it, together with the
// backend, to the command context.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	be, err := backend.New(ctx, cfg, dbx, database.New(ctx, dbx))
	if err != nil {
		dbx.Close() //nolint:errcheck
		return fmt.Errorf("create backend: %w", err)
	}
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext waits for pending notifications and closes the database.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if be := backend.FromContext(ctx); be != nil {
		be.Wait()
	}

	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}

// AddUserFlag adds the --user flag to cmd.
func AddUserFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("user", "u", os.Getenv("ROSTER_USER"), "act as the user with this id or email")
}

// Caller resolves the --user flag to a caller. An empty flag means an
// anonymous caller.
func Caller(cmd *cobra.Command) (proto.Caller, error) {
	ctx := cmd.Context()
	be := backend.FromContext(ctx)

	ref, _ := cmd.Flags().GetString("user")
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return proto.Caller{}, nil
	}

	id := ref
	if strings.Contains(ref, "@") {
		p, err := be.UserByEmail(ctx, ref)
		if err != nil {
			return proto.Caller{}, err
		}
		id = p.ID
	}

	return be.Caller(ctx, id)
}

// JSON reports whether the command should print JSON.
func JSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// AddJSONFlag adds the --json flag to cmd.
func AddJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "output as JSON")
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
