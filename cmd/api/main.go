package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/api"
	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/command"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/logging"
	"github.com/example/order-pipeline/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAPI()
	if err != nil {
		logging.Must(logging.Config{Service: "order-api"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "order-api", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var res bootstrap.Resources
	defer res.Close(logger)

	orders, err := res.OrderStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize order store", zap.Error(err))
	}
	publisher, err := res.Publisher(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize event publisher", zap.Error(err))
	}

	reg := metrics.NewRegistry()
	cmdHandler := command.NewHandler(orders, publisher, logger)
	handlers := api.NewHandlers(cmdHandler, reg, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, reg.Handler(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store_backend", cfg.StoreBackend),
			zap.String("publisher_backend", cfg.PublisherBackend),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		res.Close(logger)
		logging.Sync(logger)
		os.Exit(1)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
