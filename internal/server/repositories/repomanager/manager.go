// Package repomanager bundles repository construction and schema migration
// for the server's durable store.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/contenthub/internal/server/repositories/files"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Files() files.Repository
	Close() error
}
