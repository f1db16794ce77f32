// Package invite implements the invitation commands.
package invite

import (
	"io"
	"strconv"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Command is the invite command.
var Command = &cobra.Command{
	Use:                "invite",
	Aliases:            []string{"invites", "invitation"},
	Short:              "Manage organization invitations",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	Command.AddCommand(
		sendCommand(),
		listCommand(),
		showCommand(),
		acceptCommand(),
		revokeCommand(),
		resendCommand(),
		pendingCommand(),
		deliveriesCommand(),
	)
}

func sendCommand() *cobra.Command {
	var days int
	c := &cobra.Command{
		Use:   "send ORG EMAIL",
		Short: "Invite an email address to an organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			inv, err := be.SendInvitation(ctx, caller, proto.SendInvitationOptions{
				OrganizationID: args[0],
				Email:          args[1],
				ExpiresInDays:  days,
			})
			if err != nil {
				return err
			}

			return printInvitation(c, inv)
		},
	}

	c.Flags().IntVar(&days, "expires-in-days", 0, "days until the invitation expires (1-30)")
	return c
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list ORG",
		Aliases: []string{"ls"},
		Short:   "List the invitations of an organization",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			invs, err := be.OrganizationInvitations(ctx, caller, args[0])
			if err != nil {
				return err
			}

			return printInvitations(c, invs)
		},
	}
}

func pendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List the pending invitations addressed to the --user",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			invs, err := be.UserInvitations(ctx, caller)
			if err != nil {
				return err
			}

			return printInvitations(c, invs)
		},
	}
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			inv, err := be.Invitation(ctx, args[0])
			if err != nil {
				return err
			}

			return printInvitation(c, inv)
		},
	}
}

func acceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accept ID",
		Short: "Accept an invitation as the --user",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			a, err := be.AcceptInvitation(ctx, caller, args[0])
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), a)
			}
			c.Printf("Joined %s as %s\n", a.Organization.Name, a.Role)
			return nil
		},
	}
}

func revokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke ID",
		Short: "Revoke a pending invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			if err := be.RevokeInvitation(ctx, caller, args[0]); err != nil {
				return err
			}

			c.PrintErrln("Invitation revoked")
			return nil
		},
	}
}

func resendCommand() *cobra.Command {
	var days int
	c := &cobra.Command{
		Use:   "resend ID",
		Short: "Replace an invitation with a fresh one",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			inv, err := be.ResendInvitation(ctx, caller, args[0], days)
			if err != nil {
				return err
			}

			return printInvitation(c, inv)
		},
	}

	c.Flags().IntVar(&days, "expires-in-days", 0, "days until the new invitation expires (1-30)")
	return c
}

func deliveriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deliveries ID",
		Short: "List the notification attempts of an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			ds, err := be.InvitationDeliveries(ctx, caller, args[0])
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), ds)
			}

			if len(ds) == 0 {
				c.Println("No deliveries found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				ds,
				[]string{"Channel", "Recipient", "Status", "Error", "When"},
				func(d backend.Delivery) ([]string, error) {
					status := "-"
					if d.Status != 0 {
						status = strconv.Itoa(d.Status)
					}
					errMsg := d.Error
					if errMsg == "" {
						errMsg = "-"
					}
					return []string{d.Channel, d.Recipient, status, errMsg, humanize.Time(d.CreatedAt)}, nil
				},
			)
		},
	}
}

func printInvitation(c *cobra.Command, inv proto.Invitation) error {
	if cmd.JSON(c) {
		return cmd.WriteJSON(c.OutOrStdout(), inv)
	}

	w := c.OutOrStdout()
	line(w, "ID", inv.ID)
	line(w, "Email", inv.Email)
	line(w, "Organization", inv.Organization.Name)
	inviter := inv.InvitedBy.Name
	if inviter == "" {
		inviter = inv.InvitedBy.Email
	}
	line(w, "Invited by", inviter)
	line(w, "State", inv.State.String())
	line(w, "Expires", expires(inv))
	return nil
}

func printInvitations(c *cobra.Command, invs []proto.Invitation) error {
	if cmd.JSON(c) {
		return cmd.WriteJSON(c.OutOrStdout(), invs)
	}

	if len(invs) == 0 {
		c.Println("No invitations found")
		return nil
	}

	return tablewriter.Render(
		c.OutOrStdout(),
		invs,
		[]string{"ID", "Email", "Organization", "State", "Expires"},
		func(inv proto.Invitation) ([]string, error) {
			return []string{inv.ID, inv.Email, inv.Organization.Name, inv.State.String(), expires(inv)}, nil
		},
	)
}

func expires(inv proto.Invitation) string {
	if inv.ExpiresAt == nil {
		return "never"
	}
	return humanize.Time(*inv.ExpiresAt)
}

func line(w io.Writer, k, v string) {
	io.WriteString(w, k+": "+v+"\n") // nolint: errcheck
}
