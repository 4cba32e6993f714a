package loan

import (
	"time"

	"credit-approval/internal/domain/credit"
)

type LoanStatus string

const (
	StatusActive  LoanStatus = "ACTIVE"
	StatusMatured LoanStatus = "MATURED"
)

type Loan struct {
	ID               int64
	CustomerID       int64
	LoanAmount       credit.Money
	Tenure           int
	InterestRate     float64
	MonthlyRepayment credit.Money
	EMIsPaidOnTime   int
	Status           LoanStatus
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewLoan builds an approved loan starting on startDate. The end date is the
// start date shifted by the tenure in calendar months.
func NewLoan(customerID int64, amount credit.Money, tenure int, interestRate float64, monthlyRepayment credit.Money, startDate time.Time) *Loan {
	return &Loan{
		CustomerID:       customerID,
		LoanAmount:       amount,
		Tenure:           tenure,
		InterestRate:     interestRate,
		MonthlyRepayment: monthlyRepayment,
		EMIsPaidOnTime:   0,
		Status:           StatusActive,
		StartDate:        startDate,
		EndDate:          startDate.AddDate(0, tenure, 0),
	}
}

// RepaymentsLeft counts the EMIs still due as of the given date. A partial
// month counts as a full repayment.
func (l *Loan) RepaymentsLeft(asOf time.Time) int {
	if asOf.After(l.EndDate) {
		return 0
	}

	months := (l.EndDate.Year()-asOf.Year())*12 + int(l.EndDate.Month()) - int(asOf.Month())
	if asOf.AddDate(0, months, 0).After(l.EndDate) {
		months--
	}
	if asOf.AddDate(0, months, 0).Before(l.EndDate) {
		months++
	}
	if months < 0 {
		months = 0
	}
	return months
}

// Matured reports whether the final EMI date has passed.
func (l *Loan) Matured(asOf time.Time) bool {
	return l.EndDate.Before(asOf)
}

// Record converts the loan into the read-only form consumed by the
// eligibility evaluator.
func (l *Loan) Record() credit.LoanRecord {
	return credit.LoanRecord{
		Principal:        l.LoanAmount,
		Tenure:           l.Tenure,
		InterestRate:     l.InterestRate,
		MonthlyRepayment: l.MonthlyRepayment,
		EMIsPaidOnTime:   l.EMIsPaidOnTime,
		StartDate:        l.StartDate,
		EndDate:          l.EndDate,
	}
}

// Records converts a loan book slice for the evaluator.
func Records(loans []*Loan) []credit.LoanRecord {
	records := make([]credit.LoanRecord, 0, len(loans))
	for _, l := range loans {
		records = append(records, l.Record())
	}
	return records
}
