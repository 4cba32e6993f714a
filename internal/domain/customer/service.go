package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-approval/internal/domain/credit"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
)

type CustomerService interface {
	RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber int64, monthlyIncome credit.Money) (*Customer, error)

	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)

	CustomerExists(ctx context.Context, customerID int64) (bool, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.Publisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, pub event.Publisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber int64, monthlyIncome credit.Money) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		s.logger.WarnContext(ctx, "Validation failed: first name is empty")
		return nil, apperrors.NewValidationError("first_name", "cannot be empty")
	}
	if lastName == "" {
		s.logger.WarnContext(ctx, "Validation failed: last name is empty")
		return nil, apperrors.NewValidationError("last_name", "cannot be empty")
	}
	if age <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: non-positive age", slog.Int("age", age))
		return nil, apperrors.NewValidationError("age", "must be greater than zero")
	}
	if monthlyIncome <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: non-positive income")
		return nil, apperrors.NewValidationError("monthly_income", "must be greater than zero")
	}
	if phoneNumber <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: invalid phone number")
		return nil, apperrors.NewValidationError("phone_number", "must be a positive number")
	}

	cust := NewCustomer(firstName, lastName, age, phoneNumber, monthlyIncome)
	s.logger.InfoContext(ctx, "Customer domain object created",
		slog.Float64("approvedLimit", cust.ApprovedLimit))

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicatePhoneNumber) {
			s.logger.WarnContext(ctx, "Phone number already registered", slog.Int64("phoneNumber", phoneNumber))
			return nil, fmt.Errorf("%w: phone number already registered", apperrors.ErrAlreadyExists)
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	monitoring.RecordCustomerRegistered()
	s.publishRegisteredEvent(ctx, cust)

	s.logger.InfoContext(ctx, "Customer registered successfully", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	if customerID <= 0 {
		return nil, apperrors.NewValidationError("customer_id", "must be a positive number")
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, fmt.Errorf("%w: customer %d", apperrors.ErrCustomerNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository failed to find customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return cust, nil
}

func (s *customerService) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	if customerID <= 0 {
		return false, apperrors.NewValidationError("customer_id", "must be a positive number")
	}

	exists, err := s.repo.Exists(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed existence check", slog.Int64("customerID", customerID), slog.Any("error", err))
		return false, fmt.Errorf("failed to check customer %d: %w", customerID, err)
	}
	return exists, nil
}

func (s *customerService) publishRegisteredEvent(ctx context.Context, cust *Customer) {
	evt := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload: event.CustomerEventPayload{
			CustomerID:    cust.CustomerID,
			Name:          cust.FullName(),
			Age:           cust.Age,
			PhoneNumber:   cust.PhoneNumber,
			MonthlySalary: cust.MonthlySalary,
			ApprovedLimit: cust.ApprovedLimit,
		},
	}

	if err := s.pub.PublishCustomerRegistered(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer registered event", slog.Any("error", err))
	}
}
