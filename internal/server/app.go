// Package server initializes and runs the PlaceKeeper application server.
// It opens the database, applies migrations, selects the photo storage
// backend, and starts the HTTP API with graceful shutdown.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/placekeeper/placekeeper/internal/logging"
	"github.com/placekeeper/placekeeper/internal/server/config"
	"github.com/placekeeper/placekeeper/internal/server/httpapi"
	"github.com/placekeeper/placekeeper/internal/server/repositories/repomanager"
	"github.com/placekeeper/placekeeper/internal/server/services"
	"github.com/placekeeper/placekeeper/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, uploadsDir, err := newPhotoStore(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("photo storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	ps := services.NewPlaceService(db, rm, cfg)
	phs := services.NewPhotoService(store, cfg)

	srv := httpapi.NewServer(cfg, logger, us, ps, phs, uploadsDir)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

// newPhotoStore returns the configured backend plus the directory to serve
// statically, which is empty for object storage.
func newPhotoStore(cfg *config.Config) (storage.PhotoStore, string, error) {
	switch cfg.PhotoStorage {
	case config.PhotoStorageS3:
		return storage.NewS3Store(cfg), "", nil
	case config.PhotoStorageDisk:
		store, err := storage.NewDiskStore(cfg.UploadsDir)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown photo storage %q", cfg.PhotoStorage)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "HTTP server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "DB close error", "error", err)
	}
}
