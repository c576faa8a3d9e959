// Package server wires the containerhub components together: repositories,
// storage, mail, services and the HTTP, health and notifier runners.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/auth"
	"github.com/dmitrijs2005/containerhub/internal/server/config"
	"github.com/dmitrijs2005/containerhub/internal/server/httpapi"
	"github.com/dmitrijs2005/containerhub/internal/server/mailer"
	"github.com/dmitrijs2005/containerhub/internal/server/notifier"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/containerhub/internal/server/services"
	"github.com/dmitrijs2005/containerhub/internal/server/storage"

	gs "github.com/dmitrijs2005/containerhub/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	sqlDB    *sql.DB
	http     *httpapi.Server
	health   *gs.HealthServer
	notifier *notifier.Notifier
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		db    dbx.DBTX
		sqlDB *sql.DB
		rm    repomanager.RepositoryManager
	)

	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "using in-memory repositories, data is lost on restart")
		rm = memory.NewRepositoryManager()
	} else {
		var err error
		sqlDB, err = repomanager.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		db = sqlDB
	}

	st, err := storage.New(ctx, c)
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	ml, err := mailer.New(c, logger)
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	tokens := auth.NewIssuer(c.AccessSecret, c.RefreshSecret, c.AccessTokenTTL, c.RefreshTokenTTL)

	us := services.NewUserService(db, rm, tokens, logger)
	cs := services.NewContainerService(db, rm, st, logger)
	as := services.NewAdminService(db, rm, st, ml, logger)

	return &App{
		config:   c,
		logger:   logger,
		sqlDB:    sqlDB,
		http:     httpapi.NewServer(c.HTTPAddr, logger, us, cs, as, c.MaxUploadBytes),
		health:   gs.NewHealthServer(c.GRPCHealthAddr, logger),
		notifier: notifier.New(db, rm, st, ml, logger, c.NotifyInterval),
	}, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// runComponent runs fn and cancels the whole app when it fails, so one dead
// listener brings the others down too.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives, ctx is cancelled or a
// component fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	components := map[string]func(context.Context) error{
		"http":     app.http.Run,
		"health":   app.health.Run,
		"notifier": app.notifier.Start,
	}

	var wg sync.WaitGroup
	for name, fn := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, name, fn)
		}()
	}

	wg.Wait()

	closeDB(app.sqlDB)
	app.logger.Info(ctx, "App stopped")
}
