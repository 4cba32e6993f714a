package dto

import (
	"fmt"
	"strings"

	"credit-approval/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type RegisterCustomerRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	PhoneNumber   int64   `json:"phone_number"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Errorf("first_name cannot be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("last_name cannot be empty")
	}
	if r.Age <= 0 {
		return fmt.Errorf("age must be positive")
	}
	if r.MonthlyIncome <= 0 {
		return fmt.Errorf("monthly_income must be greater than zero")
	}
	if r.PhoneNumber <= 0 {
		return fmt.Errorf("phone_number must be positive")
	}
	return nil
}

type CustomerResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	MonthlyIncome string `json:"monthly_income"`
	ApprovedLimit string `json:"approved_limit"`
	PhoneNumber   int64  `json:"phone_number"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	return CustomerResponse{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: formatMoney(cust.MonthlySalary),
		ApprovedLimit: formatMoney(cust.ApprovedLimit),
		PhoneNumber:   cust.PhoneNumber,
	}
}

// CustomerSummary is the customer block embedded in a loan detail response.
type CustomerSummary struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber int64  `json:"phone_number"`
	Age         int    `json:"age"`
}

func NewCustomerSummary(cust *customer.Customer) CustomerSummary {
	if cust == nil {
		return CustomerSummary{}
	}

	return CustomerSummary{
		ID:          cust.CustomerID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		PhoneNumber: cust.PhoneNumber,
		Age:         cust.Age,
	}
}

func formatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func formatRate(rate float64) string {
	return decimal.NewFromFloat(rate).String()
}
