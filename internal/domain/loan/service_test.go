package loan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber int64, monthlyIncome credit.Money) (*customer.Customer, error) {
	ret := _m.Called(ctx, firstName, lastName, age, phoneNumber, monthlyIncome)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	ret := _m.Called(ctx, customerID)
	return ret.Bool(0), ret.Error(1)
}

var testEvalDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func setupLoanTest() (*MockRepository, *MockCustomerService, *loanService) {
	mockRepo := new(MockRepository)
	mockCS := new(MockCustomerService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewLoanService(mockRepo, mockCS, event.NoopPublisher{}, logger).(*loanService)
	svc.now = func() time.Time { return testEvalDate }
	return mockRepo, mockCS, svc
}

func testCustomer() *customer.Customer {
	return &customer.Customer{
		CustomerID:    1,
		FirstName:     "Test",
		LastName:      "User",
		Age:           40,
		PhoneNumber:   1111111111,
		MonthlySalary: 100_000,
		ApprovedLimit: 5_000_000,
	}
}

func TestLoanService_CheckEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("New customer lands in low band", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		mockCS.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		mockRepo.On("GetLoansByCustomer", ctx, int64(1)).Return([]*Loan{}, nil).Once()

		eval, err := svc.CheckEligibility(ctx, 1, 100_000, 8, 12)

		assert.NoError(t, err)
		assert.NotNil(t, eval)
		assert.Equal(t, 25, eval.Result.CreditScore)
		assert.True(t, eval.Result.Approved)
		assert.Equal(t, 8.0, eval.RequestedRate)
		assert.Equal(t, 16.0, eval.Result.CorrectedInterestRate)
		mockRepo.AssertExpectations(t)
		mockCS.AssertExpectations(t)
	})

	t.Run("Customer with history keeps requested rate", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		history := []*Loan{
			{
				CustomerID:       1,
				LoanAmount:       50_000,
				Tenure:           12,
				InterestRate:     8,
				MonthlyRepayment: 4_349,
				EMIsPaidOnTime:   12,
				StartDate:        testEvalDate.AddDate(0, -3, 0),
				EndDate:          testEvalDate.AddDate(0, 9, 0),
			},
			{
				CustomerID:       1,
				LoanAmount:       200_000,
				Tenure:           24,
				InterestRate:     9,
				MonthlyRepayment: 9_100,
				EMIsPaidOnTime:   24,
				StartDate:        testEvalDate.AddDate(-3, 0, 0),
				EndDate:          testEvalDate.AddDate(-1, 0, 0),
			},
		}
		mockCS.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		mockRepo.On("GetLoansByCustomer", ctx, int64(1)).Return(history, nil).Once()

		eval, err := svc.CheckEligibility(ctx, 1, 100_000, 10, 24)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, eval.Result.CreditScore, 50)
		assert.True(t, eval.Result.Approved)
		assert.Equal(t, 10.0, eval.Result.CorrectedInterestRate)
	})

	t.Run("Error - customer not found", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		notFound := apperrors.ErrCustomerNotFound
		mockCS.On("GetCustomer", ctx, int64(99)).Return(nil, notFound).Once()

		_, err := svc.CheckEligibility(ctx, 99, 100_000, 8, 12)

		assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		mockRepo.AssertNotCalled(t, "GetLoansByCustomer")
	})

	t.Run("Error - invalid proposal", func(t *testing.T) {
		_, mockCS, svc := setupLoanTest()

		_, err := svc.CheckEligibility(ctx, 1, -5, 8, 12)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.CheckEligibility(ctx, 1, 100_000, 8, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.CheckEligibility(ctx, 1, 100_000, -1, 12)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		mockCS.AssertNotCalled(t, "GetCustomer")
	})
}

func TestLoanService_CreateLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Approved loan is persisted at corrected rate", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		mockCS.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		mockRepo.On("GetLoansByCustomer", ctx, int64(1)).Return([]*Loan{}, nil).Once()
		mockRepo.On("CreateLoan", ctx, mock.MatchedBy(func(l *Loan) bool {
			return l.CustomerID == 1 &&
				l.LoanAmount == 100_000.0 &&
				l.Tenure == 12 &&
				l.InterestRate == 16.0 &&
				l.Status == StatusActive &&
				l.EndDate.Equal(l.StartDate.AddDate(0, 12, 0))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*Loan).ID = 10
		}).Return(func(ctx context.Context, l *Loan) *Loan { return l }, nil).Once()

		createdLoan, eval, err := svc.CreateLoan(ctx, 1, 100_000, 8, 12)

		assert.NoError(t, err)
		assert.NotNil(t, createdLoan)
		assert.NotNil(t, eval)
		assert.Equal(t, int64(10), createdLoan.ID)
		assert.Equal(t, 16.0, createdLoan.InterestRate)
		assert.InDelta(t, 9073.09, createdLoan.MonthlyRepayment, 1.0)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Rejected loan is not persisted", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		overLimit := testCustomer()
		overLimit.ApprovedLimit = 100_000
		history := []*Loan{
			{
				CustomerID:       1,
				LoanAmount:       1_200_000,
				Tenure:           48,
				InterestRate:     10,
				MonthlyRepayment: 30_000,
				EMIsPaidOnTime:   10,
				StartDate:        testEvalDate.AddDate(-1, 0, 0),
				EndDate:          testEvalDate.AddDate(3, 0, 0),
			},
		}
		mockCS.On("GetCustomer", ctx, int64(1)).Return(overLimit, nil).Once()
		mockRepo.On("GetLoansByCustomer", ctx, int64(1)).Return(history, nil).Once()

		createdLoan, eval, err := svc.CreateLoan(ctx, 1, 50_000, 10, 12)

		assert.NoError(t, err)
		assert.Nil(t, createdLoan)
		assert.NotNil(t, eval)
		assert.False(t, eval.Result.Approved)
		assert.Equal(t, 0, eval.Result.CreditScore)
		mockRepo.AssertNotCalled(t, "CreateLoan")
	})
}

func TestLoanService_GetLoanDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		stored := &Loan{ID: 5, CustomerID: 1, LoanAmount: 100_000, Tenure: 12, InterestRate: 16, MonthlyRepayment: 9073.09}
		mockRepo.On("GetLoanByID", ctx, int64(5)).Return(stored, nil).Once()
		mockCS.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()

		foundLoan, cust, err := svc.GetLoanDetail(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, stored, foundLoan)
		assert.Equal(t, int64(1), cust.CustomerID)
	})

	t.Run("Error - not found", func(t *testing.T) {
		mockRepo, _, svc := setupLoanTest()
		mockRepo.On("GetLoanByID", ctx, int64(9)).Return(nil, apperrors.ErrNotFound).Once()

		_, _, err := svc.GetLoanDetail(ctx, 9)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotFound)
	})
}

func TestLoanService_ListCustomerLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		loans := []*Loan{{ID: 1, CustomerID: 1}, {ID: 2, CustomerID: 1}}
		mockCS.On("CustomerExists", ctx, int64(1)).Return(true, nil).Once()
		mockRepo.On("GetLoansByCustomer", ctx, int64(1)).Return(loans, nil).Once()

		result, err := svc.ListCustomerLoans(ctx, 1)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("Error - unknown customer", func(t *testing.T) {
		mockRepo, mockCS, svc := setupLoanTest()
		mockCS.On("CustomerExists", ctx, int64(3)).Return(false, nil).Once()

		_, err := svc.ListCustomerLoans(ctx, 3)

		assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		mockRepo.AssertNotCalled(t, "GetLoansByCustomer")
	})
}
