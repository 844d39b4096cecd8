package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carewell/telehealth-scheduling/internal/api"
	"github.com/carewell/telehealth-scheduling/internal/appointment"
	"github.com/carewell/telehealth-scheduling/internal/booking"
	"github.com/carewell/telehealth-scheduling/internal/config"
	"github.com/carewell/telehealth-scheduling/internal/db"
	"github.com/carewell/telehealth-scheduling/internal/notify"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
)

const version = "0.1.0"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	logger.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

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

	apptRepo := appointment.NewPgRepository(pgPool)
	evaluator := appointment.NewEvaluator(apptRepo, cfg.EvalTimeout)
	svc := appointment.NewService(apptRepo, locker, evaluator, dispatcher, logger, cfg.CancelWindow, cfg.StoreTimeout)

	bookingRepo := booking.NewPgRepository(pgPool)
	guard := booking.NewGuard(bookingRepo, locker, dispatcher, logger, cfg.StoreTimeout)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Guard:   guard,
		PgPool:  pgPool,
		Redis:   rdb,
		Logger:  logger,
		Limiter: api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Env:     cfg.Env,
		Version: version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
}
