package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/httpapi"
	"github.com/nikolayk812/checkoutpay/internal/processor"
	"github.com/nikolayk812/checkoutpay/internal/service"
	"github.com/nikolayk812/checkoutpay/internal/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName)
	if err != nil {
		return fmt.Errorf("telemetry.SetupTracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	storeCurrency, err := domain.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		return fmt.Errorf("domain.ParseCurrency: %w", err)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("newApp: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close resources", "error", err)
		}
	}()

	verifier := processor.NewWebhookVerifier(cfg.Processor)
	if config.IsPlaceholderSecret(cfg.Processor.WebhookSecret) {
		logger.Warn("processor.webhook_secret is absent or a placeholder, all webhooks will be rejected")
	}

	handler := httpapi.NewHandler(
		service.NewInitiator(a.catalog, processor.New(cfg.Processor, logger), storeCurrency, logger),
		service.NewReconciler(verifier, a.orders, a.ledger, a.publisher, logger),
		service.NewCartService(a.snapshots, a.catalog, logger),
		service.NewOrderRegistry(a.orders, storeCurrency, logger),
		logger,
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(handler, cfg.HTTP.RequestTimeout, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}
