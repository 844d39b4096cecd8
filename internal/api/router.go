package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carewell/telehealth-scheduling/internal/appointment"
	"github.com/carewell/telehealth-scheduling/internal/booking"
)

type RouterConfig struct {
	Service *appointment.Service
	Guard   *booking.Guard
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  zerolog.Logger
	Limiter *RateLimiter
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	if cfg.Limiter != nil {
		r.Use(RateLimitMiddleware(cfg.Limiter))
	}

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Service))
		r.Get("/{id}", getAppointmentHandler(cfg.Service))
		r.Get("/{id}/availability", availabilityHandler(cfg.Service))
		r.Post("/{id}/resolve", resolveAppointmentHandler(cfg.Service))
		r.Post("/{id}/confirm", confirmAppointmentHandler(cfg.Service))
		r.Post("/{id}/complete", completeAppointmentHandler(cfg.Service))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Service))
	})

	r.Route("/organization-bookings", func(r chi.Router) {
		r.Post("/", createBookingHandler(cfg.Guard))
		r.Post("/sweep", sweepBookingsHandler(cfg.Guard))
		r.Get("/{id}", getBookingHandler(cfg.Guard))
		r.Post("/{id}/cancel", cancelBookingHandler(cfg.Guard))
	})

	return r
}
