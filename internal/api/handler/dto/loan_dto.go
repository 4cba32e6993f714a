package dto

import (
	"fmt"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
)

type CheckEligibilityRequest struct {
	CustomerID   int64   `json:"customer_id"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	Tenure       int     `json:"tenure"`
}

func (r *CheckEligibilityRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customer_id must be positive")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	if r.InterestRate < 0 {
		return fmt.Errorf("interest_rate cannot be negative")
	}
	if r.Tenure <= 0 {
		return fmt.Errorf("tenure must be positive")
	}
	return nil
}

// CreateLoanRequest carries the same proposal fields as an eligibility check.
type CreateLoanRequest = CheckEligibilityRequest

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          string  `json:"interest_rate"`
	CorrectedInterestRate *string `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    string  `json:"monthly_installment"`
}

func NewEligibilityResponse(eval *loan.Evaluation, tenure int) EligibilityResponse {
	if eval == nil {
		return EligibilityResponse{}
	}

	resp := EligibilityResponse{
		CustomerID:         eval.CustomerID,
		Approval:           eval.Result.Approved,
		InterestRate:       formatRate(eval.RequestedRate),
		Tenure:             tenure,
		MonthlyInstallment: formatMoney(eval.Result.MonthlyInstallment),
	}
	if eval.Result.Approved {
		corrected := formatRate(eval.Result.CorrectedInterestRate)
		resp.CorrectedInterestRate = &corrected
	}
	return resp
}

type CreateLoanResponse struct {
	LoanID             *int64 `json:"loan_id"`
	CustomerID         int64  `json:"customer_id"`
	LoanApproved       bool   `json:"loan_approved"`
	Message            string `json:"message"`
	MonthlyInstallment string `json:"monthly_installment"`
}

func NewCreateLoanResponse(createdLoan *loan.Loan, eval *loan.Evaluation) CreateLoanResponse {
	if eval == nil {
		return CreateLoanResponse{}
	}

	if createdLoan == nil {
		return CreateLoanResponse{
			CustomerID:         eval.CustomerID,
			LoanApproved:       false,
			Message:            "Loan not approved based on eligibility check.",
			MonthlyInstallment: formatMoney(0),
		}
	}

	return CreateLoanResponse{
		LoanID:             &createdLoan.ID,
		CustomerID:         createdLoan.CustomerID,
		LoanApproved:       true,
		Message:            "Loan approved successfully!",
		MonthlyInstallment: formatMoney(createdLoan.MonthlyRepayment),
	}
}

type LoanDetailResponse struct {
	LoanID             int64           `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         string          `json:"loan_amount"`
	InterestRate       string          `json:"interest_rate"`
	MonthlyInstallment string          `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

func NewLoanDetailResponse(domainLoan *loan.Loan, cust *customer.Customer) LoanDetailResponse {
	if domainLoan == nil {
		return LoanDetailResponse{}
	}

	return LoanDetailResponse{
		LoanID:             domainLoan.ID,
		Customer:           NewCustomerSummary(cust),
		LoanAmount:         formatMoney(domainLoan.LoanAmount),
		InterestRate:       formatRate(domainLoan.InterestRate),
		MonthlyInstallment: formatMoney(domainLoan.MonthlyRepayment),
		Tenure:             domainLoan.Tenure,
	}
}

type CustomerLoanResponse struct {
	LoanID             int64  `json:"loan_id"`
	LoanAmount         string `json:"loan_amount"`
	InterestRate       string `json:"interest_rate"`
	MonthlyInstallment string `json:"monthly_installment"`
	RepaymentsLeft     int    `json:"repayments_left"`
}

func NewCustomerLoanResponse(domainLoan *loan.Loan, asOf time.Time) CustomerLoanResponse {
	if domainLoan == nil {
		return CustomerLoanResponse{}
	}

	return CustomerLoanResponse{
		LoanID:             domainLoan.ID,
		LoanAmount:         formatMoney(domainLoan.LoanAmount),
		InterestRate:       formatRate(domainLoan.InterestRate),
		MonthlyInstallment: formatMoney(domainLoan.MonthlyRepayment),
		RepaymentsLeft:     domainLoan.RepaymentsLeft(asOf),
	}
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
