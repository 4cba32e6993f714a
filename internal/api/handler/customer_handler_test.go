package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber int64, monthlyIncome credit.Money) (*customer.Customer, error) {
	args := m.Called(ctx, firstName, lastName, age, phoneNumber, monthlyIncome)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

func newCustomerTestRouter(service customer.CustomerService) *chi.Mux {
	h := NewCustomerHandler(service, testLogger)
	r := chi.NewRouter()
	r.Post("/register", h.RegisterCustomer)
	return r
}

func TestRegisterCustomerHandler(t *testing.T) {
	registerBody := `{"first_name":"Aarav","last_name":"Sharma","age":32,"monthly_income":50000,"phone_number":9876543210}`

	t.Run("returns 201 with the derived approved limit", func(t *testing.T) {
		mockService := new(MockCustomerService)
		registered := &customer.Customer{
			CustomerID:    1,
			FirstName:     "Aarav",
			LastName:      "Sharma",
			Age:           32,
			PhoneNumber:   9876543210,
			MonthlySalary: 50000,
			ApprovedLimit: 1800000,
		}
		mockService.On("RegisterCustomer", mock.Anything, "Aarav", "Sharma", 32, int64(9876543210), 50000.0).
			Return(registered, nil)

		router := newCustomerTestRouter(mockService)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.CustomerID)
		assert.Equal(t, "Aarav Sharma", resp.Name)
		assert.Equal(t, "1800000.00", resp.ApprovedLimit)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 400 when validation fails", func(t *testing.T) {
		mockService := new(MockCustomerService)
		router := newCustomerTestRouter(mockService)

		body := `{"first_name":"","last_name":"Sharma","age":32,"monthly_income":50000,"phone_number":9876543210}`
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "RegisterCustomer")
	})

	t.Run("returns 409 when the phone number is already registered", func(t *testing.T) {
		mockService := new(MockCustomerService)
		mockService.On("RegisterCustomer", mock.Anything, "Aarav", "Sharma", 32, int64(9876543210), 50000.0).
			Return(nil, fmt.Errorf("%w: phone number already registered", apperrors.ErrAlreadyExists))

		router := newCustomerTestRouter(mockService)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 500 on unexpected service failure", func(t *testing.T) {
		mockService := new(MockCustomerService)
		mockService.On("RegisterCustomer", mock.Anything, "Aarav", "Sharma", 32, int64(9876543210), 50000.0).
			Return(nil, fmt.Errorf("unexpected failure"))

		router := newCustomerTestRouter(mockService)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		mockService.AssertExpectations(t)
	})
}
