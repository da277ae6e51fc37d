// Package httpapi exposes the account service over JSON/HTTP.
//
//	POST /api/auth/register   create a customer account, returns a session
//	POST /api/auth/login      exchange credentials for a session
//	GET  /api/auth/me         bearer token, returns the signed-in account
//	GET  /api/admin/summary   bearer token with role admin
//	GET  /healthz, /metrics
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/logging"
	"github.com/dmitrijs2005/mithaimart/internal/server/metrics"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/dmitrijs2005/mithaimart/internal/server/services"
)

// gracefulShutdownTimeout bounds how long in-flight requests may run after
// the context is cancelled.
const gracefulShutdownTimeout = 10 * time.Second

// AccountService is the subset of services.AccountService used by handlers.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, accountID string) (*models.AccountView, error)
}

type HTTPServer struct {
	address   string
	accounts  AccountService
	logger    logging.Logger
	metrics   *metrics.Metrics
	jwtSecret []byte
	handler   http.Handler
}

func NewHTTPServer(address string, l logging.Logger, as AccountService, m *metrics.Metrics, secretKey string) *HTTPServer {
	s := &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		accounts:  as,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
	s.handler = s.buildRouter()
	return s
}

// Handler returns the fully wired router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gracefulShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}
