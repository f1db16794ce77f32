package user

import (
	"time"

	"github.com/caarlos0/duration"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/jwk"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// TokenCommand issues API tokens.
var TokenCommand = &cobra.Command{
	Use:                "token",
	Short:              "Issue an API token for the --user",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := config.FromContext(ctx)
		be := backend.FromContext(ctx)

		caller, err := cmd.Caller(c)
		if err != nil {
			return err
		}

		p, err := be.Profile(ctx, caller)
		if err != nil {
			return err
		}

		expiry := cfg.TokenExpiry()
		if v, _ := c.Flags().GetString("expires-in"); v != "" {
			expiry, err = duration.Parse(v)
			if err != nil {
				return err
			}
		}

		kp, err := jwk.NewPair(cfg)
		if err != nil {
			return err
		}

		now := time.Now()
		token, err := kp.Issue(cfg.HTTP.PublicURL, p.ID, p.Email, now, expiry)
		if err != nil {
			return err
		}

		c.PrintErrln("Token issued (expires " + humanize.Time(now.Add(expiry)) + ")")
		c.Println(token)
		return nil
	},
}

func init() {
	TokenCommand.Flags().String("expires-in", "", "token lifetime (e.g. 1h, 7d, 2w)")
}
