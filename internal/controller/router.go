package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	customMW "github.com/zxcfrost1k/PaymentGatewayAPI/internal/middleware"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/service"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/signature"
)

type RouterDeps struct {
	RedisClient        *redis.Client
	TransactionService *service.TransactionService
	WebhookService     *service.WebhookService
	Metrics            *observability.Metrics
	Providers          []string
	Server             config.ServerConfig
	MerchantToken      string
	WebhookRateLimit   int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	timeout := deps.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 70 * time.Second
	}

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Server.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", signature.Header},
		AllowCredentials: deps.Server.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.RedisClient, deps.Providers)
	transactionH := NewTransactionController(deps.TransactionService)
	webhookH := NewWebhookController(deps.WebhookService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(customMW.MerchantAuth(deps.MerchantToken))

		for _, route := range transactionRoutes {
			r.Post("/transactions/"+route.resource, transactionH.Create(route))
		}
		r.Post("/transactions/{id}/cancel", transactionH.Cancel)
		r.Get("/transactions/{id}", transactionH.Info)
	})

	r.Group(func(r chi.Router) {
		if deps.WebhookRateLimit > 0 {
			r.Use(customMW.RateLimit(deps.WebhookRateLimit))
		}
		r.Post("/webhooks/{provider}", webhookH.Handle)
	})

	return r
}
