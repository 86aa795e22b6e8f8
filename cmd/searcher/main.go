// Command searcher serves full-text search over the documentation index.
//
// It loads the snapshot written by the indexer, serves /api/v1/search with a
// Redis-backed query cache, and hot-swaps the snapshot whenever an
// index.complete event arrives. Redis and Kafka are both optional at
// startup: without them the service still answers queries, just uncached
// and without live reloads.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/querylog"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher/cache"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher/handler"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/store"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/config"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/health"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/kafka"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/logger"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/metrics"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/middleware"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "searcher: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := "configs/development.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("searcher")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Serve the last-built snapshot immediately if one is on disk. Starting
	// without one is fine; the reload consumer installs the first build.
	holder := searcher.NewHolder()
	if snap, err := store.Load(cfg.Index.SnapshotPath); err != nil {
		log.Warn("no snapshot loaded at startup", "path", cfg.Index.SnapshotPath, "error", err)
	} else {
		holder.Swap(snap)
		m.ObserveSnapshot(snap.DocCount(), snap.ObjectCount(), snap.TermCount())
		log.Info("snapshot loaded",
			"stamp", snap.Stamp(),
			"docs", snap.DocCount(),
			"objects", snap.ObjectCount(),
			"terms", snap.TermCount(),
		)
	}

	var (
		rc          handler.ResultCache
		queryCache  *cache.QueryCache
		redisClient *redis.Client
	)
	redisClient, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, serving uncached", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis.CacheTTL)
		rc = queryCache
	}

	var invalidator searcher.Invalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	reloadConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete,
		searcher.HandleReload(holder, invalidator, m, log))
	go func() {
		if err := reloadConsumer.Start(ctx); err != nil {
			log.Error("reload consumer stopped", "error", err)
		}
	}()

	queryProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer queryProducer.Close()
	collector := querylog.NewCollector(queryProducer, 100, 5*time.Second)
	go collector.Run(ctx)

	checker := health.NewChecker()
	checker.Register("snapshot", func(context.Context) health.Result {
		snap := holder.Load()
		if snap == nil {
			return health.Result{Status: health.StatusDown, Message: "no snapshot loaded"}
		}
		return health.Result{Status: health.StatusUp, Message: "stamp " + snap.Stamp()}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.Result {
			if err := redisClient.Ping(ctx); err != nil {
				// the service degrades to uncached queries, it does not go down
				return health.Result{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.Result{Status: health.StatusUp}
		})
	}

	h := handler.New(holder, rc, collector, m, cfg.Search, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.Metrics(m), middleware.Timeout(cfg.Server.WriteTimeout))
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/index/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/cache/invalidate", h.InvalidateCache).Methods(http.MethodPost)
	router.HandleFunc("/healthz", checker.LiveHandler()).Methods(http.MethodGet)
	router.HandleFunc("/readyz", checker.ReadyHandler()).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		ms := metrics.NewServer(m, cfg.Metrics.Port)
		go func() {
			if err := ms.Start(ctx); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	<-collector.Done()
	log.Info("shutdown complete")
	return nil
}
