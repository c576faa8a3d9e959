// Package storage keeps uploaded files and their analysis artifacts in
// per-owner namespaces. A namespace is addressed by the owner's user id;
// paths inside it are relative and may not escape it.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/containerhub/internal/server/config"
)

type Storage interface {
	// Save writes r to relPath in the owner's namespace, creating the
	// namespace if needed and replacing any previous content.
	Save(ctx context.Context, ownerID int64, relPath string, r io.Reader) error
	// Read returns the content at relPath or common.ErrorNotFound.
	Read(ctx context.Context, ownerID int64, relPath string) ([]byte, error)
	// List returns the sorted file names at the top of the owner's
	// namespace. A namespace that does not exist yet is empty.
	List(ctx context.Context, ownerID int64) ([]string, error)
}

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return NewLocalStorage(cfg.StorageRoot), nil
	case config.StorageS3:
		return NewS3Storage(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			User:     cfg.S3RootUser,
			Password: cfg.S3RootPassword,
			Endpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
