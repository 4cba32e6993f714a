package loan

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error) {
	ret := _m.Called(ctx, newLoan)

	var r0 *Loan
	if rf, ok := ret.Get(0).(func(context.Context, *Loan) *Loan); ok {
		r0 = rf(ctx, newLoan)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Loan)
		}
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) GetLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Loan)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) GetMaturedActiveLoanIDs(ctx context.Context, asOf time.Time) ([]int64, error) {
	ret := _m.Called(ctx, asOf)

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) MarkLoanMatured(ctx context.Context, loanID int64) error {
	ret := _m.Called(ctx, loanID)
	return ret.Error(0)
}
