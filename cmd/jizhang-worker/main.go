package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"jizhang/internal/config"
	applog "jizhang/internal/log"
	"jizhang/internal/mirror"
	"jizhang/internal/notify"
	"jizhang/internal/worker"
)

func main() {
	// Load .env for local development; production injects real env.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	slog.SetDefault(logger.Logger)

	logger.Info("starting jizhang-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.PushEndpoint == "" {
		logger.Error("PUSH_ENDPOINT is required for the worker")
		os.Exit(1)
	}

	pusher := notify.NewPush(cfg.PushEndpoint, cfg.PushToken)

	// The Sheets ledger mirror is optional.
	var ledger worker.Mirror
	if os.Getenv("GOOGLE_SPREADSHEET_ID") != "" {
		sheets, err := mirror.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("failed to initialize sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		ledger = sheets
		logger.Info("sheets ledger mirror enabled")
	} else {
		logger.Info("sheets ledger mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewNotifyWorker(pusher, ledger, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err := notify.ConsumeWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		func(msg *notify.TransactionMessage) error {
			return w.Handle(ctx, msg)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
