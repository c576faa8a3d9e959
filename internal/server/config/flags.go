package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/containerhub/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-r", "-t", "-T", "-b", "-f", "-m", "-n", "-u"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g. ":8000")
//	-g string     gRPC health bind address
//	-d string     PostgreSQL DSN or "memory"
//	-s string     access token secret
//	-r string     refresh token secret
//	-t duration   access token lifetime (e.g. "15m")
//	-T duration   refresh token lifetime (e.g. "120h")
//	-b string     storage backend: local or s3
//	-f string     local storage root
//	-m string     SMTP host
//	-n duration   notifier interval, 0 disables it
//	-u int        max upload size in bytes
//
// os.Args is filtered through flagx.FilterArgs first so the -c flag and
// anything unknown never reach the flag set.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the HTTP API")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessSecret, "s", config.AccessSecret, "access token secret")
	fs.StringVar(&config.RefreshSecret, "r", config.RefreshSecret, "refresh token secret")
	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenTTL, "T", config.RefreshTokenTTL, "refresh token lifetime")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.StorageRoot, "f", config.StorageRoot, "local storage root")
	fs.StringVar(&config.MailHost, "m", config.MailHost, "SMTP host")
	fs.DurationVar(&config.NotifyInterval, "n", config.NotifyInterval, "result notifier interval")
	fs.Int64Var(&config.MaxUploadBytes, "u", config.MaxUploadBytes, "max upload size in bytes")

	return fs.Parse(args)
}
