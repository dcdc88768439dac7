package batch_test

import (
	"context"
	"customer-service/internal/batch"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerCounter struct {
	mock.Mock
}

func (m *MockCustomerCounter) Count(ctx context.Context) (customer.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(customer.Stats), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCustomerStatsJob_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { batch.NewCustomerStatsJob(nil, newTestLogger()) })
	assert.Panics(t, func() { batch.NewCustomerStatsJob(new(MockCustomerCounter), nil) })
}

func TestCustomerStatsJob_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes counts to gauges", func(t *testing.T) {
		monitoring.Business.Customers.Reset()
		counter := new(MockCustomerCounter)
		counter.On("Count", ctx).Return(customer.Stats{Total: 8, Invalid: 3}, nil).Once()

		err := batch.NewCustomerStatsJob(counter, newTestLogger()).Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 5.0, testutil.ToFloat64(monitoring.Business.Customers.WithLabelValues("valid")))
		assert.Equal(t, 3.0, testutil.ToFloat64(monitoring.Business.Customers.WithLabelValues("invalid")))
		counter.AssertExpectations(t)
	})

	t.Run("leaves gauges unchanged on error", func(t *testing.T) {
		monitoring.Business.Customers.Reset()
		monitoring.SetCustomerCounts(2, 1)
		counter := new(MockCustomerCounter)
		counter.On("Count", ctx).Return(customer.Stats{}, errors.New("db down")).Once()

		err := batch.NewCustomerStatsJob(counter, newTestLogger()).Run(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot refresh customer statistics")
		assert.Equal(t, 2.0, testutil.ToFloat64(monitoring.Business.Customers.WithLabelValues("valid")))
	})
}
