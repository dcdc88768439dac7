package customer

import (
	"context"
	"customer-service/internal/event"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"
)

const (
	customerNotFound = "Customer not found by repository"
)

// queryableAttributes are the filter keys accepted from API clients.
var queryableAttributes = map[string]struct{}{
	AttrFirstName: {},
	AttrLastName:  {},
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in Input) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	QueryCustomers(ctx context.Context, criteria map[string]string) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, in Input) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	UpgradeCredit(ctx context.Context, customerID int64) (*Customer, error)
	DowngradeCredit(ctx context.Context, customerID int64) (*Customer, error)
	ResetCustomers(ctx context.Context) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will only be logged")
		eventPublisher = event.NewLogEventPublisher(logger)
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:  cust.ID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Valid:       cust.Valid,
		CreditLevel: cust.CreditLevel,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, in Input) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	customer := NewCustomer("", "")
	if err := customer.Deserialize(in); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}

	s.logger.DebugContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, customer); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	log := s.logger.With(slog.Int64("customerID", customer.ID))
	monitoring.Business.CustomersCreatedTotal.Inc()

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		log.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.DebugContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	log.DebugContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.DebugContext(ctx, "Attempting to list all customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

// QueryCustomers filters by firstname and/or lastname. Both given means both
// must match. An empty value counts as absent. Any other key is rejected
// rather than ignored.
func (s *customerService) QueryCustomers(ctx context.Context, criteria map[string]string) ([]*Customer, error) {
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	active := make(map[string]string, len(criteria))
	for _, k := range keys {
		if _, ok := queryableAttributes[k]; !ok {
			s.logger.WarnContext(ctx, "Rejected query on unsupported attribute", slog.String("attribute", k))
			return nil, apperrors.NewQueryError(k, "filter must be firstname and/or lastname")
		}
		if criteria[k] != "" {
			active[k] = criteria[k]
		}
	}

	if len(active) == 0 {
		return s.ListCustomers(ctx)
	}

	filter, err := NewFilter(active)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Calling repository FindBy", slog.Any("criteria", active))
	customers, err := s.repo.FindBy(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error querying customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Query finished", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, in Input) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.InfoContext(ctx, "Attempting to update customer")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WarnContext(ctx, "Customer not found by repository for update")
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	if err := customer.Deserialize(in); err != nil {
		log.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return nil, err
	}
	customer.ID = customerID

	if err := s.repo.Save(ctx, customer); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer %d: %w", customerID, err)
	}

	s.publishCustomerUpdated(ctx, customer)
	log.InfoContext(ctx, "Successfully updated customer")
	return customer, nil
}

// DeleteCustomer removes the customer if present. Unknown ids succeed.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.InfoContext(ctx, "Attempting to delete customer")

	if _, err := s.repo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.InfoContext(ctx, "Customer already absent, nothing to delete")
			return nil
		}
		log.ErrorContext(ctx, "Repository error finding customer for delete", slog.Any("error", err))
		return fmt.Errorf("cannot find customer %d to delete: %w", customerID, err)
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		log.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	monitoring.Business.CustomersDeletedTotal.Inc()

	deletedEvent := event.CustomerDeletedEvent{Timestamp: time.Now(), CustomerID: customerID}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		log.ErrorContext(ctx, "Customer deleted, but FAILED to publish delete event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func (s *customerService) UpgradeCredit(ctx context.Context, customerID int64) (*Customer, error) {
	return s.changeCredit(ctx, customerID, event.CreditUpgrade, (*Customer).UpgradeCreditLevel)
}

func (s *customerService) DowngradeCredit(ctx context.Context, customerID int64) (*Customer, error) {
	return s.changeCredit(ctx, customerID, event.CreditDowngrade, (*Customer).DowngradeCreditLevel)
}

func (s *customerService) changeCredit(ctx context.Context, customerID int64, direction string, transition func(*Customer)) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID), slog.String("direction", direction))
	log.InfoContext(ctx, "Attempting credit level transition")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository error finding customer for credit change", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to %s credit: %w", customerID, direction, err)
	}

	oldLevel, oldValid := customer.CreditLevel, customer.Valid
	transition(customer)

	if err := s.repo.Save(ctx, customer); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository failed to save credit change", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save credit change for customer %d: %w", customerID, err)
	}
	monitoring.RecordCreditTransition(direction)

	changedEvent := event.CreditChangedEvent{
		Timestamp:      time.Now(),
		Direction:      direction,
		OldCreditLevel: oldLevel,
		OldValid:       oldValid,
		Payload:        NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCreditChanged(ctx, changedEvent); pubErr != nil {
		log.ErrorContext(ctx, "Credit changed, but FAILED to publish event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully changed credit level",
		slog.Int64("oldCreditLevel", oldLevel),
		slog.Int64("creditLevel", customer.CreditLevel),
		slog.Bool("valid", customer.Valid),
	)
	return customer, nil
}

func (s *customerService) ResetCustomers(ctx context.Context) error {
	s.logger.WarnContext(ctx, "Removing all customers")

	if err := s.repo.RemoveAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to remove all customers", slog.Any("error", err))
		return fmt.Errorf("failed to reset customers: %w", err)
	}

	if pubErr := s.pub.PublishCustomersReset(ctx, event.CustomersResetEvent{Timestamp: time.Now()}); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customers reset, but FAILED to publish reset event", slog.Any("error", pubErr))
	}
	return nil
}

func (s *customerService) publishCustomerUpdated(ctx context.Context, customer *Customer) {
	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if err := s.pub.PublishCustomerUpdated(ctx, updatedEvent); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer update event",
			slog.Int64("customerID", customer.ID), slog.Any("error", err))
	}
}
