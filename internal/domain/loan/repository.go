package loan

import (
	"context"
	"time"
)

type Repository interface {
	CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	GetLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	GetMaturedActiveLoanIDs(ctx context.Context, asOf time.Time) ([]int64, error)

	MarkLoanMatured(ctx context.Context, loanID int64) error
}
