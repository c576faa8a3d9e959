package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/containers"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on a pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Containers(db dbx.DBTX) containers.Repository
}
