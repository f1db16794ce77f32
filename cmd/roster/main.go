package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/cmd/roster/category"
	"github.com/charmbracelet/roster/cmd/roster/invite"
	"github.com/charmbracelet/roster/cmd/roster/org"
	"github.com/charmbracelet/roster/cmd/roster/serve"
	"github.com/charmbracelet/roster/cmd/roster/user"
	"github.com/charmbracelet/roster/pkg/config"
	logr "github.com/charmbracelet/roster/pkg/log"
	"github.com/charmbracelet/roster/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	// CommitDate contains the date of the commit that this application was
	// built against. It's set via ldflags when building.
	CommitDate = ""
)

var rootCmd = &cobra.Command{
	Use:          "roster",
	Short:        "Organization membership and invitations server",
	Long:         "Roster manages organizations, their members, and the invitations that bring new members in.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		manCmd,
		migrateCmd,
		serve.Command,
		user.Command,
		user.TokenCommand,
		org.Command,
		invite.Command,
		category.Command,
	)

	for _, c := range []*cobra.Command{
		user.Command,
		org.Command,
		invite.Command,
		category.Command,
	} {
		cmd.AddJSONFlag(c)
		cmd.AddUserFlag(c)
	}
	cmd.AddUserFlag(user.TokenCommand)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version

	version.Version = Version
	version.CommitSHA = CommitSHA
	version.CommitDate = CommitDate
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			fmt.Fprintf(os.Stderr, "parse config file: %v\n", err)
			return 1
		}
	}

	if err := cfg.ParseEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "parse environment variables: %v\n", err)
		return 1
	}

	ctx = config.WithContext(ctx, cfg)

	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		log.Errorf("failed to create logger: %v", err)
	}

	ctx = log.WithContext(ctx, logger)
	if f != nil {
		defer f.Close() // nolint: errcheck
	}

	// Set global logger
	log.SetDefault(logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running roster in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
