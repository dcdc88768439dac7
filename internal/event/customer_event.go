package event

import (
	"context"
	"time"
)

const (
	routingKeyCustomerCreated       = "customer.created"
	routingKeyCustomerUpdated       = "customer.updated"
	routingKeyCustomerDeleted       = "customer.deleted"
	routingKeyCustomerCreditChanged = "customer.credit_changed"
	routingKeyCustomersReset        = "customer.reset"
)

const (
	CreditUpgrade   = "upgrade"
	CreditDowngrade = "downgrade"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
	PublishCreditChanged(ctx context.Context, event CreditChangedEvent) error
	PublishCustomersReset(ctx context.Context, event CustomersResetEvent) error
}

type CustomerEventPayload struct {
	CustomerID  int64  `json:"customerId"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Valid       bool   `json:"valid"`
	CreditLevel int64  `json:"creditLevel"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

type CreditChangedEvent struct {
	Timestamp      time.Time            `json:"timestamp"`
	Direction      string               `json:"direction"`
	OldCreditLevel int64                `json:"oldCreditLevel"`
	OldValid       bool                 `json:"oldValid"`
	Payload        CustomerEventPayload `json:"payload"`
}

type CustomersResetEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.publish(ctx, routingKeyCustomerCreated, event)
}

func (p *RabbitMQEventPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	return p.publish(ctx, routingKeyCustomerUpdated, event)
}

func (p *RabbitMQEventPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	return p.publish(ctx, routingKeyCustomerDeleted, event)
}

func (p *RabbitMQEventPublisher) PublishCreditChanged(ctx context.Context, event CreditChangedEvent) error {
	return p.publish(ctx, routingKeyCustomerCreditChanged, event)
}

func (p *RabbitMQEventPublisher) PublishCustomersReset(ctx context.Context, event CustomersResetEvent) error {
	return p.publish(ctx, routingKeyCustomersReset, event)
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)
