package memory

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// CustomerRepository keeps customers in insertion order. Ids come from a
// counter that only moves forward until RemoveAll.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers []*customer.Customer
	lastID    int64
	logger    *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		customers: make([]*customer.Customer, 0),
		logger:    logger.With("component", "MemoryCustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !cust.IsPersisted() {
		r.lastID++
		cust.ID = r.lastID
		r.customers = append(r.customers, cust.Clone())
		r.logger.DebugContext(ctx, "Customer inserted", slog.Int64("customerID", cust.ID))
		return nil
	}

	idx := r.indexOf(cust.ID)
	if idx < 0 {
		r.logger.WarnContext(ctx, "Update of unknown customer", slog.Int64("customerID", cust.ID))
		return customer.ErrNotFound
	}
	r.customers[idx] = cust.Clone()
	r.logger.DebugContext(ctx, "Customer replaced", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(customerID)
	if idx < 0 {
		return nil, customer.ErrNotFound
	}
	return r.customers[idx].Clone(), nil
}

func (r *CustomerRepository) FindBy(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*customer.Customer, 0)
	for _, c := range r.customers {
		if filter.Matches(c) {
			result = append(result, c.Clone())
		}
	}
	return result, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return r.FindBy(ctx, customer.Filter{})
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(customerID)
	if idx < 0 {
		return nil
	}
	r.customers = append(r.customers[:idx], r.customers[idx+1:]...)
	r.logger.DebugContext(ctx, "Customer deleted", slog.Int64("customerID", customerID))
	return nil
}

// RemoveAll empties the store and restarts id assignment at 1.
func (r *CustomerRepository) RemoveAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.customers)
	r.customers = make([]*customer.Customer, 0)
	r.lastID = 0
	r.logger.InfoContext(ctx, "All customers removed", slog.Int("count", removed))
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (customer.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := customer.Stats{Total: int64(len(r.customers))}
	for _, c := range r.customers {
		if !c.Valid {
			stats.Invalid++
		}
	}
	return stats, nil
}

// indexOf must be called with mu held.
func (r *CustomerRepository) indexOf(customerID int64) int {
	for i, c := range r.customers {
		if c.ID == customerID {
			return i
		}
	}
	return -1
}
