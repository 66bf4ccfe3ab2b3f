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

	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/geocoder89/schoolhub/internal/db"
	httpx "github.com/geocoder89/schoolhub/internal/http"
	"github.com/geocoder89/schoolhub/internal/observability"
	"github.com/geocoder89/schoolhub/internal/redisclient"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	ctx := context.Background()

	// Load the config set up
	cfg, err := config.Load(ctx)
	if err != nil {
		if errors.Is(err, config.ErrConfigurationMissing) {
			fmt.Fprintln(os.Stderr, "fatal:", err)
		} else {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.Otel.Enabled {
		shutdownTracer, err := observability.InitTracer(ctx, "schoolhub", cfg.Otel.Endpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	var pool *pgxpool.Pool

	if cfg.StoreDriver == "postgres" {
		pool, err = db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		sctx, cancel := config.WithTimeout(10 * time.Second)
		err = db.EnsureSchema(sctx, pool)
		cancel()

		if err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}
	}

	var rdb *redisclient.Client

	if cfg.Redis.Addr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pctx, cancel := config.WithTimeout(2 * time.Second)
		if err := rdb.Ping(pctx); err != nil {
			// the cache degrades to misses, so keep serving
			log.Warn("redis not reachable", "addr", cfg.Redis.Addr, "err", err)
		}
		cancel()
	}

	// set up routers with the log
	router, err := httpx.NewRouter(log, pool, cfg, rdb)
	if err != nil {
		log.Error("router setup failed", "err", err)
		os.Exit(1)
	}

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
