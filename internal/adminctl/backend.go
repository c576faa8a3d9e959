package adminctl

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/server/config"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
)

// Backend is the data layer the commands operate on. DB is nil when the
// DSN selects the in-memory repositories.
type Backend struct {
	DB    *sql.DB
	Repos repomanager.RepositoryManager
}

// Exec returns the handle repositories should be bound to.
func (b *Backend) Exec() dbx.DBTX {
	if b.DB == nil {
		return nil
	}
	return b.DB
}

// InTx runs fn inside a transaction when a database is attached and
// directly otherwise.
func (b *Backend) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b.DB == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, b.DB, nil, fn)
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// openBackend is a test seam.
var openBackend = func(ctx context.Context, dsn string) (*Backend, error) {
	if dsn == config.MemoryDSN {
		return &Backend{Repos: memory.NewRepositoryManager()}, nil
	}
	db, err := repomanager.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Backend{DB: db, Repos: repomanager.NewPostgresRepositoryManager()}, nil
}
