package event

import (
	"context"
	"time"
)

type CustomerEventPayload struct {
	CustomerID    int64   `json:"customerId"`
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	PhoneNumber   int64   `json:"phoneNumber"`
	MonthlySalary float64 `json:"monthlySalary"`
	ApprovedLimit float64 `json:"approvedLimit"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type LoanEventPayload struct {
	LoanID           int64   `json:"loanId"`
	CustomerID       int64   `json:"customerId"`
	LoanAmount       float64 `json:"loanAmount"`
	Tenure           int     `json:"tenure"`
	InterestRate     float64 `json:"interestRate"`
	MonthlyRepayment float64 `json:"monthlyRepayment"`
	CreditScore      int     `json:"creditScore"`
}

type LoanApprovedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type Publisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishLoanApproved(ctx context.Context, event LoanApprovedEvent) error
}

// NoopPublisher is wired when messaging is disabled in configuration.
type NoopPublisher struct{}

var _ Publisher = NoopPublisher{}

func (NoopPublisher) PublishCustomerRegistered(context.Context, CustomerRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoanApproved(context.Context, LoanApprovedEvent) error {
	return nil
}
