package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/bootstrap"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/controller"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/service"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/webhook"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "paygate-api", "paygate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	cfg := app.Config

	// --- Providers and services ---
	factory := app.Providers()
	if err := factory.Validate(); err != nil {
		app.Logger.Fatal().Err(err).Str("provider", cfg.Providers.Active).Msg("Provider setup is invalid")
	}

	dispatcher := webhook.NewDispatcher(cfg.Webhook, app.Logger, webhook.WithMetrics(app.Metrics))
	transactionService := service.NewTransactionService(factory, app.Locker(), cfg.SupportsCurrency, app.Logger, app.Metrics)
	webhookService := service.NewWebhookService(factory, cfg.Webhook, app.Deduplicator(), dispatcher, app.Logger, app.Metrics)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		RedisClient:        app.Redis,
		TransactionService: transactionService,
		WebhookService:     webhookService,
		Metrics:            app.Metrics,
		Providers:          factory.Names(),
		Server:             cfg.Server,
		MerchantToken:      cfg.Auth.MerchantToken,
		WebhookRateLimit:   cfg.Webhook.RateLimitPerMinute,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		app.Logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Server forced to shutdown")
		}
		// Merchant notifications already scheduled get the rest of the grace period.
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn().Err(err).Msg("Merchant notifications still in flight at shutdown")
		}
		app.Close(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Server exited")
}
