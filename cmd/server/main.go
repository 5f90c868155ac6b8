package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"subsets/internal/audit"
	"subsets/internal/classification"
	"subsets/internal/platform/config"
	"subsets/internal/platform/httpserver"
	"subsets/internal/platform/logger"
	platformredis "subsets/internal/platform/redis"
	"subsets/internal/subset/handler"
	"subsets/internal/subset/metrics"
	"subsets/internal/subset/service"
	"subsets/internal/subset/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize store", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	defer cleanup()

	var lookup classification.Lookup = classification.NewClient(cfg.ClassificationsURL)
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		lookup = classification.NewCachedLookup(lookup, rdb.Client, log)
		log.Info("classification snapshot cache enabled")
	}

	var publisher audit.Publisher
	if kafka, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, log); err != nil {
		log.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	} else if kafka != nil {
		defer kafka.Close()
		publisher = kafka
		log.Info("audit publishing enabled", "topic", audit.Topic)
	}

	svc := service.New(st, lookup, log, metrics.New(), publisher)

	router := chi.NewRouter()
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting subsets server", "addr", cfg.Addr, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStore resolves the configured backend. The returned cleanup is always
// safe to call.
func buildStore(ctx context.Context, cfg config.Server) (store.Store, func(), error) {
	switch cfg.Backend {
	case store.Relational:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		return pg, func() { db.Close() }, nil
	case store.LinkedDataStore:
		return store.NewLDS(cfg.LDSURL), func() {}, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
