// Package server wires configuration, storage, the account service and the
// HTTP API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mithaimart/internal/logging"
	"github.com/dmitrijs2005/mithaimart/internal/server/config"
	"github.com/dmitrijs2005/mithaimart/internal/server/httpapi"
	"github.com/dmitrijs2005/mithaimart/internal/server/limiter"
	"github.com/dmitrijs2005/mithaimart/internal/server/metrics"
	"github.com/dmitrijs2005/mithaimart/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mithaimart/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	server  *httpapi.HTTPServer
	service *services.AccountService
}

// NewApp opens storage, runs migrations, seeds the admin account when
// configured and builds the HTTP server. It does not start listening.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "using in-memory account store, data is lost on restart")
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		app.db = db
		rm = repomanager.NewPostgresRepositoryManager()
	}

	if err := rm.RunMigrations(ctx, app.db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	opts := []services.Option{services.WithLogger(logger), services.WithRecorder(m)}
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		opts = append(opts, services.WithLimiter(limiter.NewLoginLimiter(app.redis, limiter.Config{
			MaxAttempts: c.MaxLoginAttempts,
			Cooldown:    c.LoginCooldown,
		})))
		logger.Info(ctx, "login limiter enabled", "redis", c.RedisAddr, "max_attempts", c.MaxLoginAttempts)
	}

	app.service = services.NewAccountService(app.db, rm, c, opts...)

	if c.AdminEmail != "" && c.AdminPassword != "" {
		if err := app.service.SeedAdmin(ctx, c.AdminEmail, c.AdminPassword); err != nil {
			app.close()
			return nil, err
		}
	}

	app.server = httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, app.service, m, c.SecretKey)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage handles.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close failed", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "db close failed", "error", err)
		}
	}
}
