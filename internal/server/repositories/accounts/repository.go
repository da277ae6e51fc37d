// Package accounts stores storefront accounts. Emails are expected to be
// normalized by the caller; uniqueness is enforced by the store.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/mithaimart/internal/server/models"
)

type Repository interface {
	// Create persists a new account and fills in ID and CreatedAt.
	// Returns common.ErrDuplicateAccount if the email is taken.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// GetByEmail returns common.ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByID returns common.ErrNotFound when no account matches.
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
