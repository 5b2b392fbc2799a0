package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	applog "github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal(ctx, "failed to load configuration", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.Warn(ctx, "falling back to info logging", "error", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		fatal(ctx, "failed to connect to database", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		fatal(ctx, "failed to run migrations", err)
	}

	// Redis is optional: the short-link cache and rate limiter degrade without it
	var cache *redis.Client
	if cfg.RedisEnabled() {
		cache, err = database.NewRedisClient(cfg)
		if err != nil {
			applog.Warn(ctx, "redis unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	images, err := server.NewImageStore(ctx, cfg)
	if err != nil {
		fatal(ctx, "failed to initialise media storage", err)
	}

	srv := server.New(cfg, api.Deps{DB: db, Redis: cache, Images: images})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			fatal(ctx, "server error", err)
		}
	case sig := <-quit:
		applog.Info(ctx, "received signal", "signal", sig.String())
	}

	applog.Info(ctx, "shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		fatal(ctx, "server shutdown error", err)
	}
	applog.Info(ctx, "server stopped")
}

func fatal(ctx context.Context, msg string, err error) {
	applog.Error(ctx, msg, "error", err)
	os.Exit(1)
}
