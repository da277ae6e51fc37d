package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mithaimart/internal/dbx"
	"github.com/dmitrijs2005/mithaimart/internal/server/repositories/accounts"
)

// MemoryRepositoryManager serves a single process-wide in-memory store.
// The DBTX argument is ignored and migrations are a no-op.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
