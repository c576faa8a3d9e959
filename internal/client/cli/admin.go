package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/containerhub/internal/client/api"
	"github.com/spf13/cobra"
)

func (a *App) newAdminCommand(ctx context.Context) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}
	admin.AddCommand(a.newAdminUsersCommand(ctx))
	admin.AddCommand(a.newAdminSendEmailCommand(ctx))
	return admin
}

func (a *App) newAdminUsersCommand(ctx context.Context) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users with their files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(ctx, func(c *api.Client) error {
				users, err := c.AdminUsers(ctx, name)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tFILES")
				for _, u := range users {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Email, strings.Join(u.Files, ", "))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "case-insensitive email filter")
	return cmd
}

func (a *App) newAdminSendEmailCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "send-email <userId>",
		Short: "Mail a user their first text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(ctx, func(c *api.Client) error {
				msg, err := c.SendEmail(ctx, id)
				if err != nil {
					return err
				}
				cmd.Println(msg)
				return nil
			})
		},
	}
}
