package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/database/postgres"
	"credit-approval/internal/pkg/apperrors"
)

const dateLayout = "2006-01-02"

// Loader bulk-loads seed data from CSV exports into Postgres. Rows carry
// their original IDs, so the ID sequences are realigned afterwards.
type Loader struct {
	db     postgres.DBPool
	logger *slog.Logger
	now    func() time.Time
}

func NewLoader(db postgres.DBPool, logger *slog.Logger) *Loader {
	if db == nil {
		panic("DBPool cannot be nil for Loader")
	}
	return &Loader{
		db:     db,
		logger: logger.With("component", "IngestLoader"),
		now:    time.Now,
	}
}

// Run loads customers first, then loans, then realigns the ID sequences.
func (l *Loader) Run(ctx context.Context, customerFile, loanFile string) error {
	customers, err := l.LoadCustomers(ctx, customerFile)
	if err != nil {
		return fmt.Errorf("failed to load customers: %w", err)
	}

	loans, skipped, err := l.LoadLoans(ctx, loanFile)
	if err != nil {
		return fmt.Errorf("failed to load loans: %w", err)
	}

	if err := l.ResetSequences(ctx); err != nil {
		return fmt.Errorf("failed to reset sequences: %w", err)
	}

	l.logger.InfoContext(ctx, "Seed data ingested",
		slog.Int("customers", customers),
		slog.Int("loans", loans),
		slog.Int("loans_skipped", skipped))
	return nil
}

// LoadCustomers reads rows of the form
// customer_id,first_name,last_name,age,phone_number,monthly_salary,approved_limit
// and returns the number of customers inserted.
func (l *Loader) LoadCustomers(ctx context.Context, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	query := `
        INSERT INTO customers (id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (id) DO NOTHING`

	inserted := 0
	for i, row := range rows {
		if len(row) < 7 {
			return inserted, fmt.Errorf("%w: customer row %d has %d columns, want 7", apperrors.ErrInvalidArgument, i+2, len(row))
		}

		customerID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return inserted, fmt.Errorf("%w: customer row %d: bad customer_id %q", apperrors.ErrInvalidArgument, i+2, row[0])
		}
		age, err := strconv.Atoi(row[3])
		if err != nil {
			return inserted, fmt.Errorf("%w: customer row %d: bad age %q", apperrors.ErrInvalidArgument, i+2, row[3])
		}
		phoneNumber, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return inserted, fmt.Errorf("%w: customer row %d: bad phone_number %q", apperrors.ErrInvalidArgument, i+2, row[4])
		}
		monthlySalary, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return inserted, fmt.Errorf("%w: customer row %d: bad monthly_salary %q", apperrors.ErrInvalidArgument, i+2, row[5])
		}
		approvedLimit, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return inserted, fmt.Errorf("%w: customer row %d: bad approved_limit %q", apperrors.ErrInvalidArgument, i+2, row[6])
		}

		tag, err := l.db.Exec(ctx, query, customerID, row[1], row[2], age, phoneNumber, monthlySalary, approvedLimit)
		if err != nil {
			return inserted, fmt.Errorf("%w: failed to insert customer %d: %w", apperrors.ErrDatabase, customerID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	l.logger.InfoContext(ctx, "Customers loaded", slog.Int("inserted", inserted), slog.Int("rows", len(rows)))
	return inserted, nil
}

// LoadLoans reads rows of the form
// customer_id,loan_id,loan_amount,tenure,interest_rate,monthly_repayment,emis_paid_on_time,start_date,end_date
// and returns the number of loans inserted plus the number skipped because
// their customer is missing.
func (l *Loader) LoadLoans(ctx context.Context, path string) (int, int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, 0, err
	}

	existsQuery := `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`
	insertQuery := `
        INSERT INTO loans (id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, status, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        ON CONFLICT (id) DO NOTHING`

	today := l.now()
	inserted, skipped := 0, 0
	knownCustomers := make(map[int64]bool)

	for i, row := range rows {
		if len(row) < 9 {
			return inserted, skipped, fmt.Errorf("%w: loan row %d has %d columns, want 9", apperrors.ErrInvalidArgument, i+2, len(row))
		}

		customerID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad customer_id %q", apperrors.ErrInvalidArgument, i+2, row[0])
		}
		loanID, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad loan_id %q", apperrors.ErrInvalidArgument, i+2, row[1])
		}
		loanAmount, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad loan_amount %q", apperrors.ErrInvalidArgument, i+2, row[2])
		}
		tenure, err := strconv.Atoi(row[3])
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad tenure %q", apperrors.ErrInvalidArgument, i+2, row[3])
		}
		interestRate, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad interest_rate %q", apperrors.ErrInvalidArgument, i+2, row[4])
		}
		monthlyRepayment, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad monthly_repayment %q", apperrors.ErrInvalidArgument, i+2, row[5])
		}
		emisPaidOnTime, err := strconv.Atoi(row[6])
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad emis_paid_on_time %q", apperrors.ErrInvalidArgument, i+2, row[6])
		}
		startDate, err := time.Parse(dateLayout, row[7])
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad start_date %q", apperrors.ErrInvalidArgument, i+2, row[7])
		}
		endDate, err := time.Parse(dateLayout, row[8])
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: loan row %d: bad end_date %q", apperrors.ErrInvalidArgument, i+2, row[8])
		}

		exists, checked := knownCustomers[customerID]
		if !checked {
			if err := l.db.QueryRow(ctx, existsQuery, customerID).Scan(&exists); err != nil {
				return inserted, skipped, fmt.Errorf("%w: failed to check customer %d: %w", apperrors.ErrDatabase, customerID, err)
			}
			knownCustomers[customerID] = exists
		}
		if !exists {
			l.logger.WarnContext(ctx, "Skipping loan for unknown customer",
				slog.Int64("loanID", loanID),
				slog.Int64("customerID", customerID))
			skipped++
			continue
		}

		status := loan.StatusActive
		if endDate.Before(today) {
			status = loan.StatusMatured
		}

		tag, err := l.db.Exec(ctx, insertQuery,
			loanID, customerID, loanAmount, tenure, interestRate,
			monthlyRepayment, emisPaidOnTime, status, startDate, endDate)
		if err != nil {
			return inserted, skipped, fmt.Errorf("%w: failed to insert loan %d: %w", apperrors.ErrDatabase, loanID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	l.logger.InfoContext(ctx, "Loans loaded",
		slog.Int("inserted", inserted),
		slog.Int("skipped", skipped),
		slog.Int("rows", len(rows)))
	return inserted, skipped, nil
}

// ResetSequences realigns the ID sequences with the highest ingested IDs so
// new registrations do not collide with seed rows.
func (l *Loader) ResetSequences(ctx context.Context) error {
	statements := []string{
		`SELECT setval('customers_id_seq', COALESCE((SELECT MAX(id) FROM customers), 0) + 1, false)`,
		`SELECT setval('loans_id_seq', COALESCE((SELECT MAX(id) FROM loans), 0) + 1, false)`,
	}

	for _, stmt := range statements {
		var next int64
		if err := l.db.QueryRow(ctx, stmt).Scan(&next); err != nil {
			return fmt.Errorf("%w: failed to reset sequence: %w", apperrors.ErrDatabase, err)
		}
	}
	return nil
}

// readCSV returns all data rows of the file, skipping the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
