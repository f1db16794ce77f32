// Package category implements the category commands.
package category

import (
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/roster/cmd"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/spf13/cobra"
)

// Command is the category command.
var Command = &cobra.Command{
	Use:                "category",
	Aliases:            []string{"categories"},
	Short:              "Manage organization categories",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	Command.AddCommand(
		listCommand(),
		createCommand(),
		deleteCommand(),
	)
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list ORG",
		Aliases: []string{"ls"},
		Short:   "List the categories of an organization",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			cats, err := be.Categories(ctx, caller, args[0])
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), cats)
			}

			if len(cats) == 0 {
				c.Println("No categories found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				cats,
				[]string{"ID", "Name", "Description"},
				func(cat proto.Category) ([]string, error) {
					return []string{cat.ID, cat.Name, cat.Description}, nil
				},
			)
		},
	}
}

func createCommand() *cobra.Command {
	var description string
	c := &cobra.Command{
		Use:   "create ORG NAME",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			name := strings.Join(args[1:], " ")
			opts := proto.CategoryOptions{Name: &name}
			if c.Flags().Changed("description") {
				opts.Description = &description
			}

			cat, err := be.CreateCategory(ctx, caller, args[0], opts)
			if err != nil {
				return err
			}

			if cmd.JSON(c) {
				return cmd.WriteJSON(c.OutOrStdout(), cat)
			}
			c.Println(cat.ID)
			return nil
		},
	}

	c.Flags().StringVarP(&description, "description", "d", "", "category description")
	return c
}

func deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a category",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)

			caller, err := cmd.Caller(c)
			if err != nil {
				return err
			}

			if err := be.DeleteCategory(ctx, caller, args[0]); err != nil {
				return err
			}

			c.PrintErrln("Category deleted")
			return nil
		},
	}
}
