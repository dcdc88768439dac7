package postgres

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
)

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    id BIGSERIAL PRIMARY KEY,
    firstname TEXT NOT NULL,
    lastname TEXT NOT NULL,
    valid BOOLEAN NOT NULL DEFAULT TRUE,
    credit_level BIGINT NOT NULL DEFAULT 0,
    CONSTRAINT customers_credit_valid CHECK (valid = (credit_level >= 0))
)`

const createCustomersNameIndex = `
CREATE INDEX IF NOT EXISTS idx_customers_names ON customers (firstname, lastname)`

// EnsureSchema creates the customers table and its lookup index if missing.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	for _, stmt := range []string{createCustomersTable, createCustomersNameIndex} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Schema bootstrap failed", slog.Any("error", err))
			return fmt.Errorf("%w: schema bootstrap: %w", apperrors.ErrDatabase, err)
		}
	}
	logger.InfoContext(ctx, "Database schema is up to date")
	return nil
}
