package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	infraRedis "github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/redis"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/garex"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/paygate"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/service"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Redis   *redis.Client
	Metrics *observability.Metrics

	tracer *sdktrace.TracerProvider
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	log.Logger = logger
	logger.Info().Str("instance", cfg.InstanceID).Str("active_provider", cfg.Providers.Active).Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	if cfg.Observability.EnableMetrics {
		app.Metrics = observability.NewMetrics(metricsNamespace, nil)
		logger.Info().Msg("Metrics initialized")
	}

	if cfg.Redis.Enabled {
		client, err := infraRedis.NewClient(ctx, &cfg.Redis, logger)
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.Redis = client
		logger.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Connected to Redis")
	} else {
		logger.Warn().Msg("Redis disabled: duplicate requests and webhook redeliveries are not suppressed")
	}

	if cfg.Auth.MerchantToken == "" {
		logger.Warn().Msg("auth.merchant_token is empty: every merchant request will be rejected")
	}

	return app, nil
}

// Providers builds a client for every enabled provider.
func (a *App) Providers() *providers.Factory {
	factory := providers.NewFactory(a.Config.Providers.Active)

	for name, cfg := range a.Config.Providers.All() {
		if !cfg.Enabled {
			continue
		}
		var adapter providers.Adapter
		switch name {
		case config.ProviderGarex:
			adapter = garex.New(cfg)
		case config.ProviderPaygate:
			adapter = paygate.New(cfg)
		default:
			continue
		}
		transport := providers.NewHTTPTransport(name, cfg, providers.WithMetrics(a.Metrics))
		factory.Register(providers.NewClient(adapter, transport, a.Logger, a.Metrics))
		a.Logger.Info().Str("provider", name).Str("base_url", cfg.BaseURL).Msg("Provider registered")
	}

	return factory
}

// Locker returns the redis lock when redis is enabled.
func (a *App) Locker() service.Locker {
	if a.Redis == nil {
		return service.NopLocker{}
	}
	return infraRedis.NewLocker(a.Redis, a.Config.Redis.LockTTL)
}

// Deduplicator returns the redis webhook dedup store when redis is enabled.
func (a *App) Deduplicator() service.Deduplicator {
	if a.Redis == nil {
		return service.NopDeduplicator{}
	}
	return infraRedis.NewWebhookDeduplicator(a.Redis, a.Config.Webhook.DedupTTL)
}

// Close releases redis and flushes pending spans.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if a.tracer != nil {
		if err := observability.Shutdown(ctx, a.tracer); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}
}
