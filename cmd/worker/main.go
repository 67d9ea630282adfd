package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"demoreel/internal/app"
	"demoreel/internal/config"
	"demoreel/internal/jobs"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/pkg/shutdown"
	"demoreel/internal/storage"
	"demoreel/internal/worker"
	"demoreel/internal/worker/processor"
	"demoreel/internal/worker/queue"
)

func main() {
	logCfg := logger.DefaultConfig("json")
	logCfg.ServiceName = "demoreel-worker"
	log := logger.New(logCfg)

	cfg := config.Load()
	if cfg.Services.DatabaseURL == "" {
		log.LogFatal("missing required environment variable", nil, "key", "DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, time.Minute)

	pool, err := pgxpool.New(ctx, cfg.Services.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.RegisterSimple("postgres", pool.Close)

	repo := jobs.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to prepare schema", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Services.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}

	if err := os.MkdirAll(cfg.Services.WorkDir, 0o755); err != nil {
		log.LogFatal("failed to create work dir", err, "dir", cfg.Services.WorkDir)
	}

	proc := processor.New(processor.Deps{
		Store: repo,
		Producers: func(profile string) (processor.Producer, error) {
			s, err := app.NewStudio(cfg, profile, log)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		SP:           sp,
		WorkDir:      cfg.Services.WorkDir,
		CleanupLocal: cfg.Storage.CleanupLocal,
		Log:          log,
	})

	stopped := make(chan struct{})
	// Registered last so it runs first: the job in flight is cancelled and
	// recorded before connections close.
	shutdownMgr.Register("worker", func(ctx context.Context) error {
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	go func() {
		log.Info("worker started",
			"queue", cfg.Services.QueueName,
			"provider", sp.Provider(),
			"display", cfg.Browser.Display,
		)
		err := worker.Run(shutdownMgr.Context(), worker.Deps{
			Queue:     queue.NewRedisQueue(rdb, cfg.Services.QueueName),
			Processor: proc,
			Log:       log,
		})
		close(stopped)
		if err != nil && shutdownMgr.Context().Err() == nil {
			log.Error("worker stopped", "error", err.Error())
			_ = shutdownMgr.Shutdown()
		}
	}()

	if err := shutdownMgr.Wait(); err != nil {
		log.Error("shutdown finished with errors", "error", err.Error())
		os.Exit(1)
	}
}
