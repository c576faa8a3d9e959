package cli

import (
	"context"

	"github.com/dmitrijs2005/containerhub/internal/client/api"
	"github.com/dmitrijs2005/containerhub/internal/termx"
	"github.com/spf13/cobra"
)

func (a *App) newRegisterCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := termx.ReadPassword(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter password: ")
			if err != nil {
				return err
			}
			return a.withClient(ctx, func(c *api.Client) error {
				u, err := c.Register(ctx, args[0], password)
				if err != nil {
					return err
				}
				cmd.Printf("registered %s (id %d)\n", u.Email, u.ID)
				return nil
			})
		},
	}
}

func (a *App) newLoginCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := termx.ReadPassword(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter password: ")
			if err != nil {
				return err
			}
			return a.withClient(ctx, func(c *api.Client) error {
				if err := c.Login(ctx, args[0], password); err != nil {
					return err
				}
				cmd.Println("Success!")
				return nil
			})
		},
	}
}

func (a *App) newLogoutCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(ctx, func(c *api.Client) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				cmd.Println("logged out")
				return nil
			})
		},
	}
}
