// Package user implements the user commands.
package user

import (
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Command is the user command.
var Command = &cobra.Command{
	Use:                "user",
	Aliases:            []string{"users"},
	Short:              "Manage users",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	Command.AddCommand(
		createCommand(),
		showCommand(),
		setNameCommand(),
		listCommand(),
		membershipsCommand(),
	)
}

func createCommand() *cobra.Command {
	var name string
	c := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			p, err := be.CreateUser(ctx, args[0], name)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), p)
			}
			c.Println(p.ID)
			return nil
		},
	}

	c.Flags().StringVarP(&name, "name", "n", "", "display name of the user")
	return c
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile of the --user",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			p, err := be.Profile(ctx, caller)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), p)
			}

			c.Println("ID:", p.ID)
			c.Println("Email:", p.Email)
			c.Println("Name:", p.Name)
			c.Println("Created:", humanize.Time(p.CreatedAt))
			return nil
		},
	}
}

func setNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-name NAME",
		Short: "Set the display name of the --user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			p, err := be.UpdateUserName(ctx, caller, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), p)
			}
			c.PrintErrln("Name updated")
			return nil
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			users, err := be.Users(ctx)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), users)
			}

			if len(users) == 0 {
				c.Println("No users found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				users,
				[]string{"ID", "Email", "Name", "Created"},
				func(p proto.Profile) ([]string, error) {
					return []string{p.ID, p.Email, p.Name, humanize.Time(p.CreatedAt)}, nil
				},
			)
		},
	}
}

func membershipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "memberships",
		Short: "Summarize the organizations the --user belongs to",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			s, err := be.MembershipSummary(ctx, caller)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), s)
			}

			c.Printf("%d organizations (%d as admin, %d as member)\n", s.TotalOrganizations, s.AdminOf, s.MemberOf)
			if len(s.Organizations) == 0 {
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				s.Organizations,
				[]string{"ID", "Name", "Role", "Joined"},
				func(m proto.OrganizationMembership) ([]string, error) {
					return []string{m.OrganizationID, m.OrganizationName, m.Role.String(), humanize.Time(m.JoinedAt)}, nil
				},
			)
		},
	}
}
