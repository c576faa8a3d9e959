package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":         "www.example:9000",
		"database_dsn":      "postgres://db",
		"access_secret":     "json-access",
		"access_token_ttl":  "1m",
		"refresh_token_ttl": 3 * int64(time.Minute),
		"storage_backend":   "s3",
		"s3_bucket":         "bucket",
		"mail_port":         25,
		"notify_interval":   "10s",
		"max_upload_bytes":  2048,
	})

	t.Run("loads from json", func(t *testing.T) {
		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJson(&cfg, []string{"-c", path}))

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "json-access", cfg.AccessSecret)
		assert.Equal(t, "refreshSecret", cfg.RefreshSecret, "absent keys keep previous value")
		assert.Equal(t, time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenTTL)
		assert.Equal(t, StorageS3, cfg.StorageBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 25, cfg.MailPort)
		assert.Equal(t, 10*time.Second, cfg.NotifyInterval)
		assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		var cfg, want Config
		cfg.LoadDefaults()
		want.LoadDefaults()
		require.NoError(t, parseJson(&cfg, []string{"-a", ":1"}))
		assert.Equal(t, want, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg Config
		err := parseJson(&cfg, []string{"-config", filepath.Join(t.TempDir(), "nope.json")})
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
		var cfg Config
		assert.Error(t, parseJson(&cfg, []string{"-c", bad}))
	})
}
