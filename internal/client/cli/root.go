// Package cli is the containerhub command-line client. The session is kept
// in a local SQLite file so that login survives between invocations.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/client/api"
	"github.com/dmitrijs2005/containerhub/internal/client/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const envPrefix = "CONTAINERHUB_"

// Config holds the client settings taken from flags and environment.
type Config struct {
	ServerURL   string
	SessionPath string
	Timeout     time.Duration
}

// LoadDefaults fills c from CONTAINERHUB_SERVER_URL and CONTAINERHUB_SESSION
// when set and from built-in values otherwise.
func (c *Config) LoadDefaults() {
	c.ServerURL = envOr("SERVER_URL", "http://127.0.0.1:8000")
	c.SessionPath = envOr("SESSION", ".containerhub-session.db")
	c.Timeout = 30 * time.Second
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

type App struct {
	fs     afero.Fs
	config *Config
}

// withClient opens the session store for one command run.
func (a *App) withClient(ctx context.Context, fn func(*api.Client) error) error {
	store, err := session.Open(ctx, a.config.SessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	c := api.NewClient(a.config.ServerURL, &http.Client{Timeout: a.config.Timeout}, store)
	return fn(c)
}

// NewRootCommand returns the client command tree. Files are read and
// written through fs.
func NewRootCommand(ctx context.Context, fs afero.Fs, in io.Reader, out io.Writer) *cobra.Command {
	cfg := &Config{}
	cfg.LoadDefaults()
	app := &App{fs: fs, config: cfg}

	root := &cobra.Command{
		Use:           "containerhub",
		Short:         "Upload files to containerhub and fetch their analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "server base URL")
	root.PersistentFlags().StringVar(&cfg.SessionPath, "session", cfg.SessionPath, "session database file")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")

	root.AddCommand(app.newPingCommand(ctx))
	root.AddCommand(app.newRegisterCommand(ctx))
	root.AddCommand(app.newLoginCommand(ctx))
	root.AddCommand(app.newLogoutCommand(ctx))
	root.AddCommand(app.newUploadCommand(ctx))
	root.AddCommand(app.newListCommand(ctx))
	root.AddCommand(app.newDownloadCommand(ctx))
	root.AddCommand(app.newAdminCommand(ctx))

	return root
}

func (a *App) newPingCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(ctx, func(c *api.Client) error {
				msg, err := c.Hello(ctx)
				if err != nil {
					return err
				}
				cmd.Println(msg)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
