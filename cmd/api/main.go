package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftcart/internal/audit"
	"swiftcart/internal/config"
	"swiftcart/internal/database"
	"swiftcart/internal/gateway"
	"swiftcart/internal/handler"
	"swiftcart/internal/repository"
	"swiftcart/internal/router"
	"swiftcart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting swiftcart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	cartRepo := repository.NewCartRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize payment gateway client
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		ChannelID:     cfg.Gateway.ChannelID,
		ChannelSecret: cfg.Gateway.ChannelSecret,
	}, logger)

	// Initialize gateway-response archiver with a no-op fallback
	var archiver audit.Archiver
	if cfg.Audit.Enabled {
		archiver, err = audit.NewS3Archiver(ctx, cfg.Audit.Bucket, cfg.Audit.Region, cfg.Audit.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 archiver, gateway responses will not be archived")
			archiver = audit.NewNopArchiver()
		}
	} else {
		archiver = audit.NewNopArchiver()
		logger.Info().Msg("gateway-response archival disabled")
	}

	// Initialize services
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, logger)
	paymentService := service.NewPaymentService(orderRepo, gatewayClient, archiver, service.PaymentConfig{
		Currency:          cfg.Gateway.Currency,
		MinorUnitExponent: cfg.Gateway.MinorUnitExponent,
		ConfirmURL:        cfg.Gateway.ConfirmURL,
		CancelURL:         cfg.Gateway.CancelURL,
	}, logger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	// Initialize router
	mux := router.New(cartHandler, orderHandler, paymentHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second, // confirm/capture calls can hold the request up to a minute
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
