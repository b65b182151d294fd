package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zlovtnik/homeswift/internal/config"
	"github.com/zlovtnik/homeswift/internal/handlers"
	"github.com/zlovtnik/homeswift/internal/notify"
	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/internal/repository"
	"github.com/zlovtnik/homeswift/internal/router"
	"github.com/zlovtnik/homeswift/internal/service"
)

func main() {
	// Load configuration first so we can use it for logger setup
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting homeswift service",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"notify_transport", cfg.Notify.Transport,
		"timezone", cfg.Business.Location.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.NewOracleDB(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	// Note: db.Close() is called explicitly during graceful shutdown
	logger.Info("connected to database")

	repos, err := newRepositories(db)
	if err != nil {
		logger.Error("failed to prepare repositories", "error", err)
		os.Exit(1)
	}

	sender, closeSender, err := newSender(cfg.Notify, logger)
	if err != nil {
		logger.Error("failed to create notification sender", "error", err)
		os.Exit(1)
	}

	composer, err := notify.NewComposer(notify.Branding{
		Brand:      cfg.Business.BrandName,
		AdminEmail: cfg.Business.AdminEmail,
		AdminPhone: cfg.Business.AdminPhone,
	})
	if err != nil {
		logger.Error("failed to parse notification templates", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(sender, logger, cfg.Notify.SendTimeout)
	calc := quote.NewCalculator(cfg.Pricing.CalloutFee, cfg.Business.Location)

	// Initialize services
	pricingSvc := service.NewPricingService(repos.pricing, logger)
	requestSvc := service.NewServiceRequestService(service.ServiceRequestDeps{
		Requests:   repos.requests,
		History:    repos.history,
		Providers:  repos.providers,
		Pricing:    pricingSvc,
		Calculator: calc,
		Composer:   composer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reminderSvc := service.NewReminderService(repos.requests, calc, composer, dispatcher, logger)
	reportSvc := service.NewReportService(repos.requests, cfg.Business.Location, logger)
	customerSvc := service.NewCustomerService(repos.customers)

	if cfg.Catalog.SeedOnStart {
		if _, err := pricingSvc.Seed(ctx); err != nil {
			logger.Error("failed to seed pricing catalog", "error", err)
		}
	}

	r := router.NewRouter(cfg.JWT.Secret, logger, router.Handlers{
		ServiceRequests: handlers.NewServiceRequestHandler(requestSvc, logger),
		Pricing:         handlers.NewPricingHandler(pricingSvc, logger),
		Admin:           handlers.NewAdminHandler(reminderSvc, pricingSvc, reportSvc, logger),
		Customers:       handlers.NewCustomerHandler(customerSvc, logger),
		Health:          handlers.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:        r.Setup(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Background reminder sweep
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		reminderSvc.Run(ctx, cfg.Reminder.Interval)
	}()

	// Error channel for server listen errors
	serverErrCh := make(chan error, 1)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		logger.Info("received shutdown signal")
	case err := <-serverErrCh:
		logger.Error("server listen failed", "error", err)
		exitCode = 1
	}

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		exitCode = 1
	}

	// Stop the sweep, then let in-flight notifications finish
	cancel()
	<-sweepDone
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("notifications still in flight at shutdown", "error", err)
	}
	if err := closeSender(); err != nil {
		logger.Error("notification sender close error", "error", err)
	}

	// Explicitly close database before exit
	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

type repositories struct {
	pricing   *repository.PricingRepository
	customers *repository.CustomerRepository
	providers *repository.ProviderRepository
	history   *repository.HistoryRepository
	requests  *repository.ServiceRequestRepository
}

func newRepositories(db *sql.DB) (*repositories, error) {
	pricing, err := repository.NewPricingRepository(db)
	if err != nil {
		return nil, err
	}
	customers, err := repository.NewCustomerRepository(db)
	if err != nil {
		return nil, err
	}
	providers, err := repository.NewProviderRepository(db)
	if err != nil {
		return nil, err
	}
	requests, err := repository.NewServiceRequestRepository(db, customers)
	if err != nil {
		return nil, err
	}
	return &repositories{
		pricing:   pricing,
		customers: customers,
		providers: providers,
		history:   repository.NewHistoryRepository(db),
		requests:  requests,
	}, nil
}

// newSender builds the configured notification transport and its close func
func newSender(cfg config.NotifyConfig, logger *slog.Logger) (notify.Sender, func() error, error) {
	switch cfg.Transport {
	case config.TransportLog, "":
		return notify.NewLogSender(logger), func() error { return nil }, nil
	case config.TransportAMQP:
		s, err := notify.NewAMQPSender(notify.AMQPConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.Exchange,
			RoutingKey: cfg.RoutingKey,
			From:       cfg.FromAddress,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown notification transport %q", cfg.Transport)
}

// parseLogLevel parses a log level string into slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
