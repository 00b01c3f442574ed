package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ses9133/pointpay/internal/bootstrap"
	"github.com/ses9133/pointpay/internal/controller"
	"github.com/ses9133/pointpay/internal/gateway"
	infraRedis "github.com/ses9133/pointpay/internal/infrastructure/redis"
	"github.com/ses9133/pointpay/internal/repository/postgres"
	"github.com/ses9133/pointpay/internal/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "pointpay-api", "pointpay")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	pointRepo := postgres.NewPointRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	lockManager := infraRedis.NewLockManager(app.Redis, app.Config.Payment.RefundLockTTL)

	// --- Gateways ---
	gwCfg := app.Config.Gateway
	resolver := gateway.NewResolver(
		gateway.NewMockClient(),
		gateway.NewStripeClient(gwCfg.Stripe.BaseURL, gwCfg.Stripe.SecretKey, app.Config.Payment.GatewayTimeout, app.Logger),
		gateway.NewPayPalClient(gwCfg.PayPal.BaseURL, gwCfg.PayPal.ClientSecret, gwCfg.RedirectBaseURL, app.Config.Payment.GatewayTimeout, app.Logger),
	)

	// --- Services ---
	paymentService := service.NewPaymentService(paymentRepo, pointRepo, txManager, lockManager, resolver, app.Metrics, app.Logger)

	// --- Router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		PaymentService:  paymentService,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		JWTSecret:       app.Config.Auth.JWTSecret,
		RateLimitPerMin: app.Config.Server.RateLimitPerMin,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down server...")
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Server error")
	}
	app.Logger.Info().Msg("Server exited")
}
