package adminctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/services"
	"github.com/dmitrijs2005/containerhub/internal/termx"
	"github.com/spf13/cobra"
)

func newSetAdminCommand(ctx context.Context, opts *options, use, short string, isAdmin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			return withBackend(ctx, opts, func(b *Backend) error {
				if err := b.Repos.Users(b.Exec()).SetAdmin(ctx, email, isAdmin); err != nil {
					return fmt.Errorf("%s %s: %w", use, email, err)
				}
				cmd.Printf("%s: admin=%t\n", email, isAdmin)
				return nil
			})
		},
	}
}

func newCreateAdminCommand(ctx context.Context, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Register a new user with admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])

			password, err := termx.ReadPassword(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter password: ")
			if err != nil {
				return err
			}

			return withBackend(ctx, opts, func(b *Backend) error {
				var id int64
				err := b.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
					us := services.NewUserService(tx, b.Repos, nil, logging.NewDiscardLogger())
					u, err := us.Register(ctx, email, password)
					if err != nil {
						return err
					}
					id = u.ID
					return b.Repos.Users(tx).SetAdmin(ctx, email, true)
				})
				if err != nil {
					return fmt.Errorf("create admin %s: %w", email, err)
				}
				cmd.Printf("created admin %s (id %d)\n", email, id)
				return nil
			})
		},
	}
}

func newMigrateCommand(ctx context.Context, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(ctx, opts, func(b *Backend) error {
				if b.DB == nil {
					cmd.Println("in-memory store, nothing to migrate")
					return nil
				}
				if err := b.Repos.RunMigrations(ctx, b.DB); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	}
}
