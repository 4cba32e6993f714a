package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"credit-approval/internal/domain/loan"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupLoader(t *testing.T) (context.Context, *Loader, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)

	loader := NewLoader(mockPool, testLogger)
	loader.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	return context.Background(), loader, mockPool
}

func TestLoadCustomers(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	path := writeTempCSV(t, "customer_data.csv",
		"customer_id,first_name,last_name,age,phone_number,monthly_salary,approved_limit\n"+
			"1,Aarav,Sharma,32,9876543210,50000,1800000\n"+
			"2,Isha,Verma,28,9876543211,75000,2700000\n")

	mockPool.ExpectExec("INSERT INTO customers").
		WithArgs(int64(1), "Aarav", "Sharma", 32, int64(9876543210), 50000.0, 1800000.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO customers").
		WithArgs(int64(2), "Isha", "Verma", 28, int64(9876543211), 75000.0, 2700000.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := loader.LoadCustomers(ctx, path)
	assert.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLoadCustomersRejectsMalformedRow(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	path := writeTempCSV(t, "customer_data.csv",
		"customer_id,first_name,last_name,age,phone_number,monthly_salary,approved_limit\n"+
			"one,Aarav,Sharma,32,9876543210,50000,1800000\n")

	_, err := loader.LoadCustomers(ctx, path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad customer_id")
}

func TestLoadLoans(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	path := writeTempCSV(t, "loan_data.csv",
		"customer_id,loan_id,loan_amount,tenure,interest_rate,monthly_repayment,emis_paid_on_time,start_date,end_date\n"+
			"1,100,100000,12,16,9073.09,3,2024-01-01,2025-01-01\n"+
			"1,101,50000,6,10,8791.59,6,2023-01-01,2023-07-01\n")

	mockPool.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mockPool.ExpectExec("INSERT INTO loans").
		WithArgs(int64(100), int64(1), 100000.0, 12, 16.0, 9073.09, 3, loan.StatusActive,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO loans").
		WithArgs(int64(101), int64(1), 50000.0, 6, 10.0, 8791.59, 6, loan.StatusMatured,
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, skipped, err := loader.LoadLoans(ctx, path)
	assert.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, skipped)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLoadLoansSkipsUnknownCustomer(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	path := writeTempCSV(t, "loan_data.csv",
		"customer_id,loan_id,loan_amount,tenure,interest_rate,monthly_repayment,emis_paid_on_time,start_date,end_date\n"+
			"99,100,100000,12,16,9073.09,3,2024-01-01,2025-01-01\n")

	mockPool.ExpectQuery("SELECT EXISTS").WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	inserted, skipped, err := loader.LoadLoans(ctx, path)
	assert.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestResetSequences(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT setval\\('customers_id_seq'").
		WillReturnRows(pgxmock.NewRows([]string{"setval"}).AddRow(int64(3)))
	mockPool.ExpectQuery("SELECT setval\\('loans_id_seq'").
		WillReturnRows(pgxmock.NewRows([]string{"setval"}).AddRow(int64(102)))

	assert.NoError(t, loader.ResetSequences(ctx))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRunMissingFile(t *testing.T) {
	ctx, loader, mockPool := setupLoader(t)
	defer mockPool.Close()

	err := loader.Run(ctx, "/nonexistent/customer_data.csv", "/nonexistent/loan_data.csv")
	assert.Error(t, err)
}
