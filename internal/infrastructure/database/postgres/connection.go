package postgres

import (
	"context"
	"customer-service/internal/config"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// NewConnectionPool connects and pings the database. A failed first attempt
// is retried once after cfg.ConnectRetryDelay.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := configurePool(cfg)
	if err != nil {
		return nil, err
	}

	var dbpool *pgxpool.Pool
	err = connectWithRetry(ctx, cfg.ConnectRetryDelay, logger, func() error {
		dbpool, err = openPool(ctx, poolConfig, logger)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to PostgreSQL database.", "host", poolConfig.ConnConfig.Host, "db", poolConfig.ConnConfig.Database)
	return dbpool, nil
}

func configurePool(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	connString := cfg.ConnString()
	if connString == "" {
		return nil, fmt.Errorf("database URL is empty in configuration")
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	return poolConfig, nil
}

func openPool(ctx context.Context, poolConfig *pgxpool.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("Connecting to PostgreSQL database...")
	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := verifyConnection(ctx, dbpool, logger); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func connectWithRetry(ctx context.Context, delay time.Duration, logger *slog.Logger, connect func() error) error {
	err := connect()
	if err == nil {
		return nil
	}

	logger.Warn("Database connection failed, retrying once", "error", err, "retryDelay", delay)
	select {
	case <-ctx.Done():
		return fmt.Errorf("database connection aborted: %w", ctx.Err())
	case <-time.After(delay):
	}

	if err := connect(); err != nil {
		return fmt.Errorf("database connection failed after retry: %w", err)
	}
	return nil
}

func verifyConnection(ctx context.Context, db pinger, logger *slog.Logger) error {
	logger.Info("Pinging database...")
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Ping(pingCtx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		return fmt.Errorf("failed to ping database on connect: %w", err)
	}

	return nil
}
