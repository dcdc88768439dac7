package batch

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"
)

type CustomerCounter interface {
	Count(ctx context.Context) (customer.Stats, error)
}

// CustomerStatsJob refreshes the stored-customer gauges from the store.
type CustomerStatsJob struct {
	counter CustomerCounter
	logger  *slog.Logger
}

func NewCustomerStatsJob(counter CustomerCounter, logger *slog.Logger) *CustomerStatsJob {
	if counter == nil || logger == nil {
		panic("CustomerStatsJob dependencies cannot be nil")
	}
	return &CustomerStatsJob{
		counter: counter,
		logger:  logger.With("job", "CustomerStats"),
	}
}

func (j *CustomerStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting customer statistics job.")

	stats, err := j.counter.Count(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count customers, gauges left unchanged.", slog.Any("error", err))
		return fmt.Errorf("cannot refresh customer statistics: %w", err)
	}

	monitoring.SetCustomerCounts(stats.Valid(), stats.Invalid)

	j.logger.InfoContext(ctx, "Customer statistics job finished.",
		slog.Int64("total", stats.Total),
		slog.Int64("invalid", stats.Invalid),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
