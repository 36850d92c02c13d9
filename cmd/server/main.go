package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/api"
	"github.com/spacesedan/impactwatch/internal/clients"
	"github.com/spacesedan/impactwatch/internal/inference"
	"github.com/spacesedan/impactwatch/internal/logging"
	"github.com/spacesedan/impactwatch/internal/monitoring"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("[Main] Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Every resource it
// opens is released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	var opts []inference.Option
	if cfg.Cache.Addr != "" {
		cache, err := clients.NewValkeyClient(cfg.Cache)
		if err != nil {
			slog.Warn("[Main] Prediction cache unavailable, serving without it", slog.String("error", err.Error()))
		} else {
			defer cache.Close()

			go monitoring.MonitorCacheHealth(ctx, cache, &cache.Healthy, time.Second*monitoring.HEALTHCHECK_TIMER)
			opts = append(opts, inference.WithCache(cache))
		}
	}

	svc, err := inference.Load(cfg.Paths, opts...)
	if err != nil {
		return fmt.Errorf("failed to load models, run cmd/train first: %w", err)
	}

	server := api.NewServer(svc, cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		slog.Info("[Main] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}
