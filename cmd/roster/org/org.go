// Package org implements the organization commands.
package org

import (
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Command is the org command.
var Command = &cobra.Command{
	Use:                "org",
	Aliases:            []string{"orgs", "organization"},
	Short:              "Manage organizations",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	Command.AddCommand(
		createCommand(),
		listCommand(),
		showCommand(),
		renameCommand(),
		leaveCommand(),
		removeCommand(),
		roleCommand(),
	)
}

func createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an organization with the --user as its admin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			o, err := be.CreateOrganization(ctx, caller, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), o)
			}
			c.Println(o.ID)
			return nil
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the organizations of the --user",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			orgs, err := be.UserOrganizations(ctx, caller)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), orgs)
			}

			if len(orgs) == 0 {
				c.Println("No organizations found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				orgs,
				[]string{"ID", "Name", "Role", "Joined"},
				func(o proto.Organization) ([]string, error) {
					joined := "-"
					if o.JoinedAt != nil {
						joined = humanize.Time(*o.JoinedAt)
					}
					return []string{o.ID, o.Name, o.Role.String(), joined}, nil
				},
			)
		},
	}
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ORG",
		Short: "Show an organization and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			d, err := be.Organization(ctx, caller, args[0])
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), d)
			}

			c.Println("ID:", d.ID)
			c.Println("Name:", d.Name)
			c.Println("Created:", humanize.Time(d.CreatedAt))
			c.Println("Your role:", d.UserRole)
			c.Println()
			return tablewriter.Render(
				c.OutOrStdout(),
				d.Members,
				[]string{"Membership", "Email", "Name", "Role", "Joined"},
				func(m proto.Member) ([]string, error) {
					return []string{m.ID, m.User.Email, m.User.Name, m.Role.String(), humanize.Time(m.JoinedAt)}, nil
				},
			)
		},
	}
}

func renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ORG NAME",
		Short: "Rename an organization",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			o, err := be.UpdateOrganizationName(ctx, caller, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), o)
			}
			c.PrintErrln("Organization renamed to " + o.Name)
			return nil
		},
	}
}

func leaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leave ORG",
		Short: "Leave an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			if err := be.LeaveOrganization(ctx, caller, args[0]); err != nil {
				return err
			}

			c.PrintErrln("Left organization")
			return nil
		},
	}
}

func removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove ORG MEMBERSHIP",
		Aliases: []string{"rm"},
		Short:   "Remove a member from an organization",
		Args:    cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			if err := be.RemoveMember(ctx, caller, args[0], args[1]); err != nil {
				return err
			}

			c.PrintErrln("Member removed")
			return nil
		},
	}
}

func roleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "role ORG MEMBERSHIP ROLE",
		Short: "Change the role of a member",
		Long:  "Change the role of a member. ROLE is either ADMIN or MEMBER.",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			role, err := access.ParseRole(args[2])
			if err != nil {
				return proto.ErrInvalidRole
			}

			m, err := be.ChangeMemberRole(ctx, caller, args[0], args[1], role)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), m)
			}
			c.PrintErrln("Role changed to " + m.Role.String())
			return nil
		},
	}
}
