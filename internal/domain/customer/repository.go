package customer

import (
	"context"
	"customer-service/internal/pkg/apperrors"
	"fmt"
)

var ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

// Stats summarises the stored customers by validity.
type Stats struct {
	Total   int64
	Invalid int64
}

func (s Stats) Valid() int64 {
	return s.Total - s.Invalid
}

// CustomerRepository is the Record Store. Save assigns ids to new customers
// and replaces existing ones; callers must Save after every mutation.
type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindBy(ctx context.Context, filter Filter) ([]*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	// Delete is idempotent: removing an unknown id is not an error.
	Delete(ctx context.Context, customerID int64) error

	RemoveAll(ctx context.Context) error

	Count(ctx context.Context) (Stats, error)
}
