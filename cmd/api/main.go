package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/usecase/confirmation"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/usecase/delivery"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/usecase/payment"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/auth"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/bancard"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/metrics"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/notification"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logger.Options{
		Production: cfg.Logger.Format == "json",
		Level:      cfg.Logger.Level,
		Service:    cfg.Logger.Service,
	})
	defer appLogger.Flush()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Service stopped with error", map[string]any{"error": err.Error()})
		appLogger.Flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	tp := timeProvider.NewRealTimeProvider()

	gatewayConfig := cfg.GatewaySettings()
	if err := gatewayConfig.Validate(); err != nil {
		// the service still starts; every gateway operation reports the configuration error
		appLogger.Warn("Payment gateway is not fully configured", map[string]any{"error": err.Error()})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	dbManager := database.NewManager(cfg.DatabaseSettings(), appLogger, tp).ObservePoolWith(recorder)
	db, err := dbManager.Connect()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Warn("Failed to close database", map[string]any{"error": err.Error()})
		}
	}()

	migrateCtx, cancelMigrate := dbManager.WithTimeout(context.Background())
	err = dbManager.MigrationManager().MigrateAll(migrateCtx)
	cancelMigrate()
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	collector := database.NewMetricsCollector(appLogger, tp, recorder)
	transactions := repository.NewTransactionRepository(db, tp, appLogger, collector)
	orders := repository.NewOrderRepository(db, tp, appLogger, collector)

	sinks := []notification.Sink{notification.NewLogSink(appLogger)}
	if cfg.Notification.WebhookURL != "" {
		sinks = append(sinks, notification.NewWebhookSink(
			cfg.Notification.WebhookURL,
			cfg.Notification.WebhookSecret,
			cfg.Notification.DeliverTimeout,
			metrics.InstrumentRoundTripper(registry, http.DefaultTransport, "webhook"),
		))
	}
	notifier := notification.NewDispatcher(cfg.NotificationSettings(), sinks, recorder, tp, appLogger)

	gatewayClient := bancard.NewClient(
		gatewayConfig,
		metrics.InstrumentRoundTripper(registry, http.DefaultTransport, "bancard"),
		appLogger,
	)
	authorizer := auth.NewAuthorizer(cfg.Auth.AdminUserIDs)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	reconciler := confirmation.NewReconciler(
		cfg.ConfirmationSettings(),
		transactions,
		orders,
		notifier,
		recorder,
		tp,
		appLogger,
	)
	payments := payment.NewService(cfg.PaymentSettings(), payment.Dependencies{
		Repository:   transactions,
		Gateway:      gatewayClient,
		Confirmation: reconciler,
		IDGenerator:  idgen.NewGenerator(),
		Authorizer:   authorizer,
		Orders:       orders,
		Notifier:     notifier,
		Metrics:      recorder,
		TimeProvider: tp,
		Logger:       appLogger,
	})
	tracker := delivery.NewTracker(transactions, authorizer, notifier, tp, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, routes.Handlers{
		Payment:      handler.NewPaymentHandler(payments, appLogger),
		Card:         handler.NewCardHandler(payments, appLogger),
		Delivery:     handler.NewDeliveryHandler(tracker, appLogger),
		Confirmation: handler.NewConfirmationHandler(reconciler, appLogger),
		Health:       handler.NewHealthHandler(dbManager, tp, appLogger),
		Metrics:      metrics.Handler(registry),
	}, tokens, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":      server.Addr,
			"env":       cfg.Environment,
			"gateway":   gatewayConfig.ResolvedBaseURL(),
			"test_mode": gatewayConfig.IsTestMode(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server", map[string]any{"signal": sig.String()})
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}
	// handlers are done, nothing enqueues notifications anymore
	if err := notifier.Shutdown(ctx); err != nil {
		appLogger.Warn("Notifications lost on shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited", nil)
	return runErr
}
