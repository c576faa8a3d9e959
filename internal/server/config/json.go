package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/containerhub/internal/flagx"
	"github.com/dmitrijs2005/containerhub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent keys keep whatever the previous layers produced.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	GRPCHealthAddr  *string         `json:"grpc_health_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	AccessSecret    *string         `json:"access_secret"`
	RefreshSecret   *string         `json:"refresh_secret"`
	AccessTokenTTL  *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL *timex.Duration `json:"refresh_token_ttl"`
	StorageBackend  *string         `json:"storage_backend"`
	StorageRoot     *string         `json:"storage_root"`
	S3RootUser      *string         `json:"s3_root_user"`
	S3RootPassword  *string         `json:"s3_root_password"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	MailHost        *string         `json:"mail_host"`
	MailPort        *int            `json:"mail_port"`
	MailUsername    *string         `json:"mail_username"`
	MailPassword    *string         `json:"mail_password"`
	MailFrom        *string         `json:"mail_from"`
	MailFromName    *string         `json:"mail_from_name"`
	NotifyInterval  *timex.Duration `json:"notify_interval"`
	MaxUploadBytes  *int64          `json:"max_upload_bytes"`
}

// parseJson loads the file named by -c/-config in args, if any, and
// overlays the keys it sets onto config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.AccessSecret, c.AccessSecret)
	setStr(&config.RefreshSecret, c.RefreshSecret)
	setStr(&config.StorageBackend, c.StorageBackend)
	setStr(&config.StorageRoot, c.StorageRoot)
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setStr(&config.MailHost, c.MailHost)
	setStr(&config.MailUsername, c.MailUsername)
	setStr(&config.MailPassword, c.MailPassword)
	setStr(&config.MailFrom, c.MailFrom)
	setStr(&config.MailFromName, c.MailFromName)

	if c.AccessTokenTTL != nil {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL != nil {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.NotifyInterval != nil {
		config.NotifyInterval = c.NotifyInterval.Duration
	}
	if c.MailPort != nil {
		config.MailPort = *c.MailPort
	}
	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
}
