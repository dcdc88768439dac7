package event

import (
	"context"
	"log/slog"
)

// LogEventPublisher records events in the log instead of a broker. It is
// used when RabbitMQ is disabled.
type LogEventPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*LogEventPublisher)(nil)

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LogEventPublisher{logger: logger.With("component", "LogEventPublisher")}
}

func (p *LogEventPublisher) log(ctx context.Context, routingKey string, attrs ...any) error {
	p.logger.InfoContext(ctx, "Domain event", append([]any{slog.String("routingKey", routingKey)}, attrs...)...)
	return nil
}

func (p *LogEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.log(ctx, routingKeyCustomerCreated, slog.Int64("customerId", event.Payload.CustomerID))
}

func (p *LogEventPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	return p.log(ctx, routingKeyCustomerUpdated, slog.Int64("customerId", event.Payload.CustomerID))
}

func (p *LogEventPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	return p.log(ctx, routingKeyCustomerDeleted, slog.Int64("customerId", event.CustomerID))
}

func (p *LogEventPublisher) PublishCreditChanged(ctx context.Context, event CreditChangedEvent) error {
	return p.log(ctx, routingKeyCustomerCreditChanged,
		slog.Int64("customerId", event.Payload.CustomerID),
		slog.String("direction", event.Direction),
		slog.Int64("creditLevel", event.Payload.CreditLevel),
	)
}

func (p *LogEventPublisher) PublishCustomersReset(ctx context.Context, event CustomersResetEvent) error {
	return p.log(ctx, routingKeyCustomersReset)
}
