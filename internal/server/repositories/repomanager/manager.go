package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mithaimart/internal/dbx"
	"github.com/dmitrijs2005/mithaimart/internal/server/repositories/accounts"
)

// RepositoryManager hands out repositories bound to a DB handle or
// transaction and owns schema migrations for its backend.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
