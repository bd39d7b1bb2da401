package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/config"
	"github.com/thehashrocket/issue-portal-sub000/internal/database"
	"github.com/thehashrocket/issue-portal-sub000/internal/notify"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository/memory"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository/postgres"
	"github.com/thehashrocket/issue-portal-sub000/internal/router"
	"github.com/thehashrocket/issue-portal-sub000/internal/storage"
	"github.com/thehashrocket/issue-portal-sub000/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	deps, cleanup, err := buildDeps(context.Background(), l, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("startup failed")
	}
	defer cleanup()

	// http
	r := router.New(l, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageType).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Info().Msg("shutdown complete")
}

// buildDeps assembles the repositories for the configured storage backend
// plus the blob store and notifier shared by both.
func buildDeps(ctx context.Context, l zerolog.Logger, cfg config.Config) (router.Deps, func(), error) {
	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return router.Deps{}, nil, fmt.Errorf("upload dir: %w", err)
	}

	var d router.Deps
	cleanup := func() {}

	switch cfg.StorageType {
	case config.StorageMemory:
		l.Warn().Msg("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		d = router.Deps{
			Issues:        store.Issues(),
			Clients:       store.Clients(),
			Users:         store.Users(),
			Files:         store.Files(),
			Notifications: store.Notifications(),
		}
	case config.StoragePostgres:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			return router.Deps{}, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.ApplyMigrations(ctx, pool); err != nil {
			pool.Close()
			return router.Deps{}, nil, fmt.Errorf("migrations: %w", err)
		}
		d = router.Deps{
			Issues:        postgres.NewIssueRepo(pool),
			Clients:       postgres.NewClientRepo(pool),
			Users:         postgres.NewUserRepo(pool),
			Files:         postgres.NewFileRepo(pool),
			Notifications: postgres.NewNotificationRepo(pool),
			DB:            pool,
		}
		cleanup = pool.Close
	default:
		return router.Deps{}, nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	d.Blobs = blobs
	d.Notifier = notify.NewService(d.Notifications, l, notify.NewLogSender(l))
	return d, cleanup, nil
}
