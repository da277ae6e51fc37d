package client

import (
	"context"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
)

// Client is the storefront's view of the auth server.
type Client interface {
	Close() error
	Register(ctx context.Context, name, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Me(ctx context.Context, token string) (*models.User, error)
	AdminSummary(ctx context.Context, token string) (*models.AdminSummary, error)
	Ping(ctx context.Context) error
}
