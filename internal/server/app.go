// Package server wires the group server together: database, catalog,
// storage backend, session state, dispatcher, TCP transport and the metrics
// endpoint, and runs them until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/server/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/attempts"
	"github.com/dmitrijs2005/groupshare/internal/server/catalog"
	"github.com/dmitrijs2005/groupshare/internal/server/config"
	"github.com/dmitrijs2005/groupshare/internal/server/dispatch"
	"github.com/dmitrijs2005/groupshare/internal/server/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/metrics"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/groupshare/internal/server/storage"
	"github.com/dmitrijs2005/groupshare/internal/server/tcp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *dispatch.Dispatcher
}

// OpenDatabase opens the configured database and brings its schema up to
// date.
func OpenDatabase(ctx context.Context, c *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	rm, err := repomanager.NewRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if c.DatabaseDriver == repomanager.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}
	return db, rm, nil
}

func newStorage(ctx context.Context, c *config.Config) (storage.Storage, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		return storage.NewS3(ctx, storage.S3Config{
			User:         c.S3User,
			Password:     c.S3Password,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return storage.NewLocal(c.StorageRoot)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, rm, err := OpenDatabase(ctx, c)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(db, rm)

	records, err := cat.LoadAccounts(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	loaded, err := cat.LoadGroups(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	fs, err := newStorage(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	d := dispatch.New(dispatch.Config{
		Accounts:        accounts.NewStore(records),
		Attempts:        attempts.NewTracker(c.AttemptLimit, c.AttemptWindow, cat, logger),
		Groups:          groups.NewDirectory(cat, fs, logger, loaded),
		Members:         cat,
		Storage:         fs,
		SessionValidity: c.SessionValidity,
		Logger:          logger,
	})

	logger.Info(ctx, "state loaded", "accounts", len(records), "groups", len(loaded), "storage", c.StorageBackend)

	return &App{config: c, logger: logger, db: db, dispatcher: d}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startTCPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := tcp.NewServer(app.config.ListenAddr, app.dispatcher, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "metrics server shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for the servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startTCPServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
