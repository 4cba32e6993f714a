package customer

import (
	"math"
	"time"

	"credit-approval/internal/domain/credit"
)

// ApprovedLimitMultiple is the rounding unit for derived credit limits.
const ApprovedLimitMultiple = 100_000

type Customer struct {
	CustomerID    int64        `json:"customerId"`
	FirstName     string       `json:"firstName"`
	LastName      string       `json:"lastName"`
	Age           int          `json:"age"`
	PhoneNumber   int64        `json:"phoneNumber"`
	MonthlySalary credit.Money `json:"monthlySalary"`
	ApprovedLimit credit.Money `json:"approvedLimit"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func NewCustomer(firstName, lastName string, age int, phoneNumber int64, monthlySalary credit.Money) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		PhoneNumber:   phoneNumber,
		MonthlySalary: monthlySalary,
		ApprovedLimit: DeriveApprovedLimit(monthlySalary),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DeriveApprovedLimit computes the credit ceiling: 36x monthly salary,
// rounded to the nearest lakh.
func DeriveApprovedLimit(monthlySalary credit.Money) credit.Money {
	return math.Round(36*monthlySalary/ApprovedLimitMultiple) * ApprovedLimitMultiple
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Snapshot produces the read-only profile consumed by the eligibility
// evaluator.
func (c *Customer) Snapshot() credit.Profile {
	return credit.Profile{
		CustomerID:    c.CustomerID,
		MonthlySalary: c.MonthlySalary,
		ApprovedLimit: c.ApprovedLimit,
	}
}
