// Command featured serves POST /v1/features over HTTP.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-features/internal/chessbuilder"
	appcfg "github.com/park285/cheese-features/internal/config"
	"github.com/park285/cheese-features/internal/httpapi"
	"github.com/park285/cheese-features/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	deps, err := chessbuilder.NewStateless(cfg, logger)
	if err != nil {
		logger.Fatal("init_failed", zap.Error(err))
	}
	handler, err := httpapi.NewHandler(deps.Service, httpapi.Config{MaxBodyBytes: cfg.HTTPMaxBodyBytes}, logger)
	if err != nil {
		logger.Fatal("init_failed", zap.Error(err))
	}
	srv := httpapi.NewServer(handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("featured_listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("listen_failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	logger.Info("featured_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown_error", zap.Error(err))
	}
}
