package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Contains(t, names, "00001_init.sql")

	body, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)
	s := string(body)
	assert.True(t, strings.Contains(s, "-- +goose Up"))
	assert.True(t, strings.Contains(s, "-- +goose Down"))
	assert.Contains(t, s, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, s, "CREATE TABLE IF NOT EXISTS containers")
}
