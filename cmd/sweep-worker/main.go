package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carewell/telehealth-scheduling/internal/booking"
	"github.com/carewell/telehealth-scheduling/internal/config"
	"github.com/carewell/telehealth-scheduling/internal/db"
	"github.com/carewell/telehealth-scheduling/internal/notify"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sweep-worker").Logger()
	logger.Info().Msg("sweep-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.SweepInterval).Msg("running booking sweep worker")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	dispatcher := notify.NewAsyncDispatcher(notify.LogSink{Logger: logger}, cfg.NotifyBuffer, logger)
	defer dispatcher.Close()

	repo := booking.NewPgRepository(pgPool)
	guard := booking.NewGuard(repo, locker, dispatcher, logger, cfg.StoreTimeout)

	// Run once at startup
	runOnce(rootCtx, guard, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping sweep worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, guard, logger)
		}
	}
}

func runOnce(ctx context.Context, guard *booking.Guard, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	completed, err := guard.Sweep(runCtx)
	if err != nil {
		if errors.Is(err, booking.ErrSweepInFlight) {
			logger.Warn().Msg("sweep still in flight, skipping tick")
			return
		}
		logger.Error().Err(err).Msg("sweep run error")
		return
	}
	logger.Info().Int("completed", completed).Dur("elapsed", time.Since(start)).Msg("sweep run complete")
}
