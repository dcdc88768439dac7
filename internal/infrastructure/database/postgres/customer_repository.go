package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const selectCustomerColumns = `SELECT id, firstname, lastname, valid, credit_level FROM customers`

const pgCheckViolation = "23514"

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if !cust.IsPersisted() {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	query := `
        INSERT INTO customers (firstname, lastname, valid, credit_level)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	startTime := time.Now()

	var id int64
	err := r.db.QueryRow(ctx, query, cust.FirstName, cust.LastName, cust.Valid, cust.CreditLevel).Scan(&id)
	recordQuery("InsertCustomer", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return translateDBError("failed to insert customer", err)
	}

	cust.ID = id
	r.logger.DebugContext(ctx, "Customer inserted successfully", slog.Int64("customerID", id))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	log := r.logger.With(slog.Int64("customerID", cust.ID))

	query := `
        UPDATE customers
        SET firstname = $1,
            lastname = $2,
            valid = $3,
            credit_level = $4
        WHERE id = $5`
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, query, cust.FirstName, cust.LastName, cust.Valid, cust.CreditLevel, cust.ID)
	recordQuery("UpdateCustomer", startTime, err)
	if err != nil {
		log.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return translateDBError("failed to update customer", err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	log.DebugContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := selectCustomerColumns + ` WHERE id = $1`
	startTime := time.Now()

	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&cust.ID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Valid,
		&cust.CreditLevel,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		recordQuery("FindCustomerByID", startTime, nil)
		return nil, customer.ErrNotFound
	}
	recordQuery("FindCustomerByID", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	return &cust, nil
}

// FindBy turns each non-nil filter field into an equality predicate joined
// with AND. An empty filter returns every row.
func (r *CustomerRepository) FindBy(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	where, args := buildWhere(filter)
	return r.queryCustomers(ctx, "FindCustomersBy", selectCustomerColumns+where+` ORDER BY id ASC`, args...)
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return r.queryCustomers(ctx, "FindAllCustomers", selectCustomerColumns+` ORDER BY id ASC`)
}

func (r *CustomerRepository) queryCustomers(ctx context.Context, queryName, query string, args ...any) ([]*customer.Customer, error) {
	startTime := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		recordQuery(queryName, startTime, err)
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		if err := rows.Scan(&cust.ID, &cust.FirstName, &cust.LastName, &cust.Valid, &cust.CreditLevel); err != nil {
			recordQuery(queryName, startTime, err)
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, &cust)
	}

	err = rows.Err()
	recordQuery(queryName, startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	query := `DELETE FROM customers WHERE id = $1`
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, query, customerID)
	recordQuery("DeleteCustomer", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.DebugContext(ctx, "Delete affected zero rows, customer already absent", slog.Int64("customerID", customerID))
	}
	return nil
}

// RemoveAll truncates the table. The id sequence is left untouched.
func (r *CustomerRepository) RemoveAll(ctx context.Context) error {
	startTime := time.Now()

	_, err := r.db.Exec(ctx, `TRUNCATE TABLE customers`)
	recordQuery("TruncateCustomers", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to truncate customers", slog.Any("error", err))
		return fmt.Errorf("%w: failed to remove all customers: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "All customers removed")
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (customer.Stats, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT valid) FROM customers`
	startTime := time.Now()

	var stats customer.Stats
	err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Invalid)
	recordQuery("CountCustomers", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return customer.Stats{}, fmt.Errorf("%w: failed to count customers: %w", apperrors.ErrDatabase, err)
	}
	return stats, nil
}

func buildWhere(filter customer.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.ID != nil {
		add(customer.AttrID, *filter.ID)
	}
	if filter.FirstName != nil {
		add(customer.AttrFirstName, *filter.FirstName)
	}
	if filter.LastName != nil {
		add(customer.AttrLastName, *filter.LastName)
	}
	if filter.Valid != nil {
		add(customer.AttrValid, *filter.Valid)
	}
	if filter.CreditLevel != nil {
		add(customer.AttrCreditLevel, *filter.CreditLevel)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func recordQuery(queryName string, startTime time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(startTime))
}

func translateDBError(action string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return apperrors.NewValidationError("valid", "credit level and validity disagree")
	}
	return apperrors.WrapDatabaseError(err, action)
}
