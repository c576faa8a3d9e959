// Package adminctl implements the operator CLI: there is no API that grants
// admin rights, so promotion happens directly against the database.
package adminctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/containerhub/internal/server/config"
	"github.com/spf13/cobra"
)

type options struct {
	dsn string
}

func defaultDSN() string {
	if v, ok := os.LookupEnv(config.EnvPrefix + "DATABASE_DSN"); ok && v != "" {
		return v
	}
	var c config.Config
	c.LoadDefaults()
	return c.DatabaseDSN
}

// NewRootCommand returns the adminctl command tree.
func NewRootCommand(ctx context.Context, in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Administrative tasks for containerhub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", defaultDSN(),
		`database DSN, "memory" for a throwaway in-process store`)

	root.AddCommand(newSetAdminCommand(ctx, opts, "promote", "Grant admin rights to a user", true))
	root.AddCommand(newSetAdminCommand(ctx, opts, "demote", "Revoke admin rights from a user", false))
	root.AddCommand(newCreateAdminCommand(ctx, opts))
	root.AddCommand(newMigrateCommand(ctx, opts))

	return root
}

// withBackend opens the backend for one command run and closes it afterwards.
func withBackend(ctx context.Context, opts *options, fn func(*Backend) error) error {
	b, err := openBackend(ctx, opts.dsn)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer b.Close()
	return fn(b)
}
