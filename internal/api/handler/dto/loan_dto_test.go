package dto

import (
	"testing"
	"time"

	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"

	"github.com/stretchr/testify/assert"
)

func mockLoan() *loan.Loan {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &loan.Loan{
		ID:               1,
		CustomerID:       7,
		LoanAmount:       100000.0,
		Tenure:           12,
		InterestRate:     16.0,
		MonthlyRepayment: 9073.09,
		Status:           loan.StatusActive,
		StartDate:        start,
		EndDate:          start.AddDate(0, 12, 0),
	}
}

func TestCheckEligibilityRequestValidate(t *testing.T) {
	valid := CheckEligibilityRequest{CustomerID: 1, LoanAmount: 100000, InterestRate: 10, Tenure: 12}
	assert.NoError(t, valid.Validate())

	t.Run("rejects non-positive customer_id", func(t *testing.T) {
		req := valid
		req.CustomerID = 0
		assert.Error(t, req.Validate())
	})

	t.Run("rejects non-positive loan_amount", func(t *testing.T) {
		req := valid
		req.LoanAmount = 0
		assert.Error(t, req.Validate())
	})

	t.Run("rejects negative interest_rate", func(t *testing.T) {
		req := valid
		req.InterestRate = -1
		assert.Error(t, req.Validate())
	})

	t.Run("accepts zero interest_rate", func(t *testing.T) {
		req := valid
		req.InterestRate = 0
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects non-positive tenure", func(t *testing.T) {
		req := valid
		req.Tenure = 0
		assert.Error(t, req.Validate())
	})
}

func TestNewEligibilityResponse(t *testing.T) {
	t.Run("approved carries the corrected rate", func(t *testing.T) {
		eval := &loan.Evaluation{
			CustomerID:    7,
			RequestedRate: 10.0,
			Result: credit.Result{
				CreditScore:           25,
				Approved:              true,
				CorrectedInterestRate: 16.0,
				MonthlyInstallment:    9073.09,
			},
		}

		resp := NewEligibilityResponse(eval, 12)
		assert.Equal(t, int64(7), resp.CustomerID)
		assert.True(t, resp.Approval)
		assert.Equal(t, "10", resp.InterestRate)
		if assert.NotNil(t, resp.CorrectedInterestRate) {
			assert.Equal(t, "16", *resp.CorrectedInterestRate)
		}
		assert.Equal(t, 12, resp.Tenure)
		assert.Equal(t, "9073.09", resp.MonthlyInstallment)
	})

	t.Run("rejected omits the corrected rate", func(t *testing.T) {
		eval := &loan.Evaluation{
			CustomerID:    7,
			RequestedRate: 10.0,
			Result:        credit.Result{CreditScore: 0, Approved: false, CorrectedInterestRate: 10.0},
		}

		resp := NewEligibilityResponse(eval, 12)
		assert.False(t, resp.Approval)
		assert.Nil(t, resp.CorrectedInterestRate)
		assert.Equal(t, "0.00", resp.MonthlyInstallment)
	})
}

func TestNewCreateLoanResponse(t *testing.T) {
	t.Run("approved loan", func(t *testing.T) {
		created := mockLoan()
		eval := &loan.Evaluation{CustomerID: 7, RequestedRate: 10.0}

		resp := NewCreateLoanResponse(created, eval)
		if assert.NotNil(t, resp.LoanID) {
			assert.Equal(t, int64(1), *resp.LoanID)
		}
		assert.Equal(t, int64(7), resp.CustomerID)
		assert.True(t, resp.LoanApproved)
		assert.Equal(t, "Loan approved successfully!", resp.Message)
		assert.Equal(t, "9073.09", resp.MonthlyInstallment)
	})

	t.Run("rejected loan", func(t *testing.T) {
		eval := &loan.Evaluation{CustomerID: 7, RequestedRate: 10.0}

		resp := NewCreateLoanResponse(nil, eval)
		assert.Nil(t, resp.LoanID)
		assert.Equal(t, int64(7), resp.CustomerID)
		assert.False(t, resp.LoanApproved)
		assert.Equal(t, "Loan not approved based on eligibility check.", resp.Message)
		assert.Equal(t, "0.00", resp.MonthlyInstallment)
	})
}

func TestNewLoanDetailResponse(t *testing.T) {
	cust := &customer.Customer{
		CustomerID:  7,
		FirstName:   "Aarav",
		LastName:    "Sharma",
		Age:         32,
		PhoneNumber: 9876543210,
	}

	resp := NewLoanDetailResponse(mockLoan(), cust)
	assert.Equal(t, int64(1), resp.LoanID)
	assert.Equal(t, int64(7), resp.Customer.ID)
	assert.Equal(t, "Aarav", resp.Customer.FirstName)
	assert.Equal(t, "100000.00", resp.LoanAmount)
	assert.Equal(t, "16", resp.InterestRate)
	assert.Equal(t, "9073.09", resp.MonthlyInstallment)
	assert.Equal(t, 12, resp.Tenure)
}

func TestNewCustomerLoanResponse(t *testing.T) {
	l := mockLoan()

	t.Run("mid tenure", func(t *testing.T) {
		resp := NewCustomerLoanResponse(l, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, int64(1), resp.LoanID)
		assert.Equal(t, 7, resp.RepaymentsLeft)
	})

	t.Run("past end date", func(t *testing.T) {
		resp := NewCustomerLoanResponse(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 0, resp.RepaymentsLeft)
	})
}
