package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jizhang/internal/cache"
	"jizhang/internal/config"
	"jizhang/internal/core"
	apphttp "jizhang/internal/http"
	applog "jizhang/internal/log"
	"jizhang/internal/notify"
	"jizhang/internal/services"
	"jizhang/internal/store"
	memstore "jizhang/internal/store/memory"
	"jizhang/internal/store/rest"
)

func main() {
	// Load .env for local development; production injects real env.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("unknown timezone", "timezone", cfg.Timezone, applog.FieldError, err)
		os.Exit(1)
	}
	cal := core.NewCalendar(loc)

	// The raw-list cache is always session-scoped memory; the analytics
	// view cache uses the configured backend so it can outlive restarts
	// or be shared between replicas.
	lists := cache.New(cache.NewMemory(cfg.CacheMaxEntries), cfg.CacheTTL)

	viewStore, cleanup, err := newViewStore(cfg)
	if err != nil {
		logger.Error("failed to initialize view cache", "backend", cfg.CacheBackend, applog.FieldError, err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}
	views := cache.New(viewStore, cfg.CacheTTL)

	manager := cache.NewManager()
	manager.Register(lists)
	if cfg.CacheBackend != config.CacheRedis {
		// Redis expires entries server-side, no sweep needed.
		manager.Register(views)
	}
	manager.StartCleanup(cfg.CacheTTL)
	defer manager.Stop()

	var (
		source  store.Source
		mutator store.Mutator
	)
	switch cfg.StoreBackend {
	case config.StoreMemory:
		// Local development: an empty in-process store.
		s := memstore.New(cal)
		source, mutator = s, s
	default:
		client := rest.New(cfg.APIBaseURL, cfg.APIKey, cal)
		source, mutator = client, client
	}

	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		queue, err := notify.NewQueue(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("notification queue unavailable, continuing without notifications", applog.FieldError, err)
		} else {
			defer queue.Close()
			notifier = queue
			logger.Info("notification queue connected",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	analytics := services.NewAnalytics(source, lists, views, cal,
		logger.WithComponent(applog.ComponentAnalytics).Logger)
	mutations := services.NewMutations(source, mutator, notifier,
		logger.WithComponent(applog.ComponentMutation).Logger, lists, views)

	srv := apphttp.NewServer(":"+cfg.Port, analytics, mutations, cal, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting jizhang server",
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"cache_backend", cfg.CacheBackend,
		"timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

func newViewStore(cfg *config.Config) (cache.Store, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		s, err := cache.NewSQLite(cfg.SQLiteCachePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.CacheRedis:
		r, err := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return cache.NewMemory(cfg.CacheMaxEntries), nil, nil
	}
}
