package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

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

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("name", cust.FullName()))

	query := `
        INSERT INTO customers (first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.PhoneNumber,
		cust.MonthlySalary,
		cust.ApprovedLimit,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	monitoring.RecordDBQuery("insert_customer", queryStatus(err), time.Since(start))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.Int64("phoneNumber", cust.PhoneNumber))
			return customer.ErrDuplicatePhoneNumber
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer by ID", slog.Int64("customerID", customerID))

	query := `
        SELECT id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at
        FROM customers
        WHERE id = $1`

	var cust customer.Customer
	start := time.Now()
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Age,
		&cust.PhoneNumber,
		&cust.MonthlySalary,
		&cust.ApprovedLimit,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	monitoring.RecordDBQuery("find_customer_by_id", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}

	return &cust, nil
}

func (r *CustomerRepository) Exists(ctx context.Context, customerID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`

	var exists bool
	start := time.Now()
	err := r.db.QueryRow(ctx, query, customerID).Scan(&exists)
	monitoring.RecordDBQuery("customer_exists", queryStatus(err), time.Since(start))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check customer existence", slog.Int64("customerID", customerID), slog.Any("error", err))
		return false, fmt.Errorf("%w: failed to check customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}

	return exists, nil
}

func queryStatus(err error) string {
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "error"
	}
	return "ok"
}
