package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"demoreel/internal/config"
	"demoreel/internal/httpapi"
	"demoreel/internal/httpapi/handlers"
	"demoreel/internal/jobs"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/pkg/shutdown"
	"demoreel/internal/storage"
	"demoreel/internal/worker/queue"
)

func main() {
	logCfg := logger.DefaultConfig("json")
	logCfg.ServiceName = "demoreel-api"
	log := logger.New(logCfg)

	log.Info("starting demoreel API", "version", "0.1.0")

	cfg := config.Load()
	if cfg.Services.DatabaseURL == "" {
		log.LogFatal("missing required environment variable", nil, "key", "DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	log.Info("connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.Services.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.RegisterSimple("postgres", pool.Close)

	repo := jobs.NewRepository(pool)
	if err := repo.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to prepare schema", err)
	}
	log.Info("PostgreSQL connected")

	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Services.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	q := queue.NewRedisQueue(rdb, cfg.Services.QueueName)
	if err := q.Ping(ctx); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected", "queue", cfg.Services.QueueName)

	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	router := httpapi.NewRouter(handlers.Deps{
		Jobs:  repo,
		Queue: q,
		SP:    sp,
		Log:   log,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Services.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	if err := shutdownMgr.Wait(); err != nil {
		log.Error("shutdown finished with errors", "error", err.Error())
	}
}
