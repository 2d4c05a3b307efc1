// Package server wires the taskboard server together: storage, the identity
// provider, the user cache, and the HTTP and gRPC health servers.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/httpapi"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/dmitrijs2005/taskboard/internal/server/usercache"

	gs "github.com/dmitrijs2005/taskboard/internal/server/grpc"
)

// tokenPurgeInterval is how often expired refresh tokens are deleted.
const tokenPurgeInterval = time.Hour

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	cache    *usercache.RedisCache
	identity *services.IdentityService
	http     *httpapi.Server
	grpc     *gs.GRPCServer
}

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, logging.FormatJSON, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var cache services.UserCache
	if c.RedisAddr != "" {
		rc, err := usercache.Dial(ctx, c.RedisAddr, c.UserCacheTTL)
		if err != nil {
			// the cache is optional, the store is the source of truth
			logger.Warn(ctx, "user cache disabled", "addr", c.RedisAddr, "error", err)
		} else {
			app.cache = rc
			cache = rc
		}
	}

	app.identity = services.NewIdentityService(db, rm, c, logger)
	users := services.NewUserService(db, rm, cache, logger)
	tasks := services.NewTaskService(db, rm, logger)
	exports := services.NewExportService(db, rm, c, logger)

	app.http, err = httpapi.NewServer(c.HTTPAddr, httpapi.Deps{
		Tasks:     tasks,
		Exporter:  exports,
		Users:     users,
		Accounts:  app.identity,
		Identity:  app.identity,
		Logger:    logger,
		AccessLog: os.Stdout,
	}, c.ShutdownTimeout)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	if c.GRPCAddr != "" {
		app.grpc = gs.NewGRPCServer(c.GRPCAddr, logger)
	}

	return app, nil
}

// Run serves until ctx is cancelled or one of the servers fails, which
// stops the others.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.http.Run(ctx)
	})

	if app.grpc != nil {
		g.Go(func() error {
			return app.grpc.Run(ctx)
		})
	}

	g.Go(func() error {
		app.purgeTokens(ctx)
		return nil
	})

	return g.Wait()
}

func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.identity.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "refresh tokens purged", "count", n)
		}
	}
}

// Close releases the store and cache connections.
func (app *App) Close() error {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close failed", "error", err)
		}
	}
	return app.db.Close()
}
