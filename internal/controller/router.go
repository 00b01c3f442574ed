package controller

import (
	"time"

	"github.com/ses9133/pointpay/internal/infrastructure/config"
	"github.com/ses9133/pointpay/internal/infrastructure/observability"
	customMW "github.com/ses9133/pointpay/internal/middleware"
	"github.com/ses9133/pointpay/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	PaymentService  *service.PaymentService
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig
	JWTSecret       string
	RateLimitPerMin int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))
	if deps.RateLimitPerMin > 0 {
		r.Use(customMW.RateLimit(deps.RateLimitPerMin))
	}

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.PaymentService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(customMW.RequireAuth(deps.JWTSecret))

		r.Post("/payments", paymentH.CreatePayment)
		r.Post("/payments/approve", paymentH.ApprovePayment)
		r.Get("/payments", paymentH.ListMyPayments)
		r.Post("/payments/{id}/refund", paymentH.RefundPayment)

		r.Get("/points/balance", paymentH.GetBalance)
	})

	return r
}
