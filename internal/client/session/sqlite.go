// Package session keeps the CLI's token pair in a small SQLite file so
// consecutive invocations share one login.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/containerhub/internal/server/models"

	_ "modernc.org/sqlite"
)

const (
	keyAccess  = "access_token"
	keyRefresh = "refresh_token"
	keyType    = "token_type"
)

type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore makes sure the metadata table exists on db.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("init session db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

// Load returns the stored pair, empty when nobody is logged in.
func (s *SQLiteStore) Load(ctx context.Context) (models.TokenPair, error) {
	var (
		pair models.TokenPair
		err  error
	)
	if pair.AccessToken, err = s.get(ctx, keyAccess); err != nil {
		return models.TokenPair{}, err
	}
	if pair.RefreshToken, err = s.get(ctx, keyRefresh); err != nil {
		return models.TokenPair{}, err
	}
	if pair.TokenType, err = s.get(ctx, keyType); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Save replaces the stored pair atomically.
func (s *SQLiteStore) Save(ctx context.Context, pair models.TokenPair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range map[string]string{keyAccess: pair.AccessToken, keyRefresh: pair.RefreshToken, keyType: pair.TokenType} {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v)
		if err != nil {
			return fmt.Errorf("failed to set metadata[%s]: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
