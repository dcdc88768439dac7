package customer

import (
	"context"
	"customer-service/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, e event.CustomerCreatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, e event.CustomerUpdatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerDeleted(ctx context.Context, e event.CustomerDeletedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCreditChanged(ctx context.Context, e event.CreditChangedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomersReset(ctx context.Context, e event.CustomersResetEvent) error {
	return _m.Called(ctx, e).Error(0)
}

var _ event.EventPublisher = (*MockEventPublisher)(nil)
