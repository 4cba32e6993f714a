package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"

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
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const loanColumns = `id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, status, start_date, end_date, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	query := `
        INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, status, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
        RETURNING ` + loanColumns

	var created loan.Loan
	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		newLoan.CustomerID,
		newLoan.LoanAmount,
		newLoan.Tenure,
		newLoan.InterestRate,
		newLoan.MonthlyRepayment,
		newLoan.EMIsPaidOnTime,
		newLoan.Status,
		newLoan.StartDate,
		newLoan.EndDate,
	).Scan(
		&created.ID,
		&created.CustomerID,
		&created.LoanAmount,
		&created.Tenure,
		&created.InterestRate,
		&created.MonthlyRepayment,
		&created.EMIsPaidOnTime,
		&created.Status,
		&created.StartDate,
		&created.EndDate,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	monitoring.RecordDBQuery("insert_loan", queryStatus(err), time.Since(start))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", slog.Int64("loanID", created.ID))
	return &created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var found loan.Loan
	start := time.Now()
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&found.ID,
		&found.CustomerID,
		&found.LoanAmount,
		&found.Tenure,
		&found.InterestRate,
		&found.MonthlyRepayment,
		&found.EMIsPaidOnTime,
		&found.Status,
		&found.StartDate,
		&found.EndDate,
		&found.CreatedAt,
		&found.UpdatedAt,
	)
	monitoring.RecordDBQuery("find_loan_by_id", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to query loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loan %d: %w", apperrors.ErrDatabase, loanID, err)
	}

	return &found, nil
}

func (r *LoanRepository) GetLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY start_date, id`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID)
	monitoring.RecordDBQuery("find_loans_by_customer", queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loans for customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(
			&l.ID,
			&l.CustomerID,
			&l.LoanAmount,
			&l.Tenure,
			&l.InterestRate,
			&l.MonthlyRepayment,
			&l.EMIsPaidOnTime,
			&l.Status,
			&l.StartDate,
			&l.EndDate,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func (r *LoanRepository) GetMaturedActiveLoanIDs(ctx context.Context, asOf time.Time) ([]int64, error) {
	query := `SELECT id FROM loans WHERE status = $1 AND end_date < $2 ORDER BY id`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, loan.StatusActive, asOf)
	monitoring.RecordDBQuery("find_matured_active_loans", queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query matured loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query matured loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: failed to scan loan id: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating loan ids: %w", apperrors.ErrDatabase, err)
	}

	return ids, nil
}

func (r *LoanRepository) MarkLoanMatured(ctx context.Context, loanID int64) error {
	query := `UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2`

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, loan.StatusMatured, loanID)
	monitoring.RecordDBQuery("mark_loan_matured", queryStatus(err), time.Since(start))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark loan matured", slog.Int64("loanID", loanID), slog.Any("error", err))
		return fmt.Errorf("%w: failed to mark loan %d matured: %w", apperrors.ErrDatabase, loanID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, loan likely not found", slog.Int64("loanID", loanID))
		return fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
	}

	return nil
}
