package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable the server reads.
const EnvPrefix = "CONTAINERHUB_"

// loadDotEnv exports variables from path into the process environment.
// Variables that are already set win; a missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("config: ignoring %s: %v\n", path, err)
	}
}

// parseEnv overlays CONTAINERHUB_* variables onto config. lookup is
// os.LookupEnv outside of tests.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("ACCESS_SECRET", &config.AccessSecret)
	str("REFRESH_SECRET", &config.RefreshSecret)
	str("STORAGE_BACKEND", &config.StorageBackend)
	str("STORAGE_ROOT", &config.StorageRoot)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("MAIL_HOST", &config.MailHost)
	str("MAIL_USERNAME", &config.MailUsername)
	str("MAIL_PASSWORD", &config.MailPassword)
	str("MAIL_FROM", &config.MailFrom)
	str("MAIL_FROM_NAME", &config.MailFromName)

	if err := dur("ACCESS_TOKEN_TTL", &config.AccessTokenTTL); err != nil {
		return err
	}
	if err := dur("REFRESH_TOKEN_TTL", &config.RefreshTokenTTL); err != nil {
		return err
	}
	if err := dur("NOTIFY_INTERVAL", &config.NotifyInterval); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "MAIL_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAIL_PORT: %w", EnvPrefix, err)
		}
		config.MailPort = port
	}
	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		config.MaxUploadBytes = n
	}

	return nil
}
