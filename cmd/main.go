package main

import (
	"context"
	"customer-service/internal/api"
	mw "customer-service/internal/api/middleware"
	"customer-service/internal/batch"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/event"
	"customer-service/internal/infrastructure/database/memory"
	"customer-service/internal/infrastructure/database/postgres"
	"customer-service/internal/infrastructure/logging"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultStatsSchedule = "*/5 * * * *"
	defaultStatsTimeout  = 30 * time.Second
)

// @title Customer REST API Service
// @version 1.0
// @description Create, read, update, delete and query customers and move their credit level up or down.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", cfg.Source, "driver", cfg.Database.Driver)

	return cfg, logger, nil
}

// initializeStore returns the configured customer store and a func that
// releases its resources.
func initializeStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (customer.CustomerRepository, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Info("Using in-memory customer store")
		return memory.NewCustomerRepository(logger), func() {}, nil
	}

	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		return nil, nil, err
	}
	closeDatabase := func() {
		logger.Info("Closing database connection pool...")
		dbPool.Close()
	}

	if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
		closeDatabase()
		return nil, nil, err
	}

	return postgres.NewCustomerRepository(dbPool, logger), closeDatabase, nil
}

// initializePublisher connects to RabbitMQ when enabled. Events are only
// logged when it is disabled or unreachable.
func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, func()) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, customer events will be logged only")
		return event.NewLogEventPublisher(logger), func() {}
	}

	conn, err := event.NewRabbitMQConnection(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, falling back to log publisher", "error", err)
		return event.NewLogEventPublisher(logger), func() {}
	}
	closeConn := func() {
		logger.Info("Closing RabbitMQ connection...")
		if err := conn.Close(); err != nil {
			logger.Warn("RabbitMQ connection close failed", "error", err)
		}
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Warn("RabbitMQ publisher setup failed, falling back to log publisher", "error", err)
		closeConn()
		return event.NewLogEventPublisher(logger), func() {}
	}
	return publisher, closeConn
}

func runServe(configPath string) error {
	cfg, logger, err := initializeApp(configPath)
	if err != nil {
		return err
	}

	repo, closeStore, err := initializeStore(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher := initializePublisher(cfg, logger)
	defer closePublisher()

	logger.Info("Initializing application components...")
	customerService := customer.NewCustomerService(repo, publisher, logger)

	statsJob := batch.NewCustomerStatsJob(repo, logger)
	runStatsJob(statsJob, statsTimeout(cfg), logger)
	cronScheduler := startBatchJobs(cfg, logger, statsJob)

	limiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger)
	defer limiter.Stop()
	router := api.SetupRouter(customerService, limiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	return handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func runMigrate(configPath string) error {
	cfg, logger, err := initializeApp(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		logger.Info("Nothing to migrate for driver", "driver", cfg.Database.Driver)
		return nil
	}

	ctx := context.Background()
	_, closeStore, err := initializeStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	closeStore()
	logger.Info("Migration complete")
	return nil
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) error {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			cronScheduler.Stop()
			return fmt.Errorf("server exited unexpectedly: %w", err)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.")
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	if triggerReason != "server exited" {
		logger.Info("Waiting for server goroutine to confirm exit...")
		select {
		case err := <-serverErrors:
			if err != nil {
				logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
			} else {
				logger.Info("Server goroutine confirmed exit.")
			}
		case <-time.After(5 * time.Second):
			logger.Warn("Timed out waiting for server goroutine confirmation.")
		}
	}

	logger.Info("Application shutdown process complete.")
	return nil
}

func statsTimeout(cfg *config.Config) time.Duration {
	if cfg.Batch.StatsTimeout <= 0 {
		return defaultStatsTimeout
	}
	return cfg.Batch.StatsTimeout
}

func runStatsJob(job *batch.CustomerStatsJob, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		logger.Error("Customer statistics job finished with error", slog.Any("error", err))
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, statsJob *batch.CustomerStatsJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.StatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultStatsSchedule
		logger.Warn("Batch statistics schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := statsTimeout(cfg)

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "CustomerStats")
		jobLogger.Info("Cron triggered: Running customer statistics job.")
		runStatsJob(statsJob, jobTimeout, jobLogger)
	}))

	if err != nil {
		logger.Error("Failed to schedule customer statistics job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled customer statistics job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
