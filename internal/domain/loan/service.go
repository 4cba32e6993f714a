package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
)

type Money = credit.Money

// Evaluation pairs an eligibility result with the rate the caller asked for.
type Evaluation struct {
	CustomerID    int64
	RequestedRate float64
	Result        credit.Result
}

type LoanService interface {
	CheckEligibility(ctx context.Context, customerID int64, amount Money, interestRate float64, tenure int) (*Evaluation, error)

	CreateLoan(ctx context.Context, customerID int64, amount Money, interestRate float64, tenure int) (*Loan, *Evaluation, error)

	GetLoanDetail(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error)

	ListCustomerLoans(ctx context.Context, customerID int64) ([]*Loan, error)
}

var _ LoanService = (*loanService)(nil)

type loanService struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.Publisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewLoanService(repo Repository, cs customer.CustomerService, pub event.Publisher, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if cs == nil {
		panic("customer service cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanService, using default stderr handler")
	}

	return &loanService{
		repo:            repo,
		customerService: cs,
		pub:             pub,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

func validateProposal(amount Money, interestRate float64, tenure int) error {
	if amount <= 0 {
		return apperrors.NewValidationError("loan_amount", "must be greater than zero")
	}
	if interestRate < 0 {
		return apperrors.NewValidationError("interest_rate", "cannot be negative")
	}
	if tenure <= 0 {
		return apperrors.NewValidationError("tenure", "must be greater than zero")
	}
	return nil
}

// evaluate loads the customer snapshot plus loan history and runs the pure
// evaluator over them.
func (s *loanService) evaluate(ctx context.Context, customerID int64, amount Money, interestRate float64, tenure int) (*Evaluation, error) {
	if err := validateProposal(amount, interestRate, tenure); err != nil {
		return nil, err
	}

	cust, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.GetLoansByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loan history", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loan history for customer %d: %w", customerID, err)
	}

	proposal := credit.Proposal{Amount: amount, Tenure: tenure, InterestRate: interestRate}
	result := credit.Evaluate(cust.Snapshot(), Records(history), proposal, s.now())

	return &Evaluation{
		CustomerID:    customerID,
		RequestedRate: interestRate,
		Result:        result,
	}, nil
}

func (s *loanService) CheckEligibility(ctx context.Context, customerID int64, amount Money, interestRate float64, tenure int) (*Evaluation, error) {
	s.logger.InfoContext(ctx, "Checking loan eligibility", slog.Int64("customerID", customerID))

	eval, err := s.evaluate(ctx, customerID, amount, interestRate, tenure)
	if err != nil {
		return nil, err
	}

	outcome := "rejected"
	if eval.Result.Approved {
		outcome = "approved"
	}
	monitoring.RecordEligibilityCheck(outcome, eval.Result.CreditScore)

	s.logger.InfoContext(ctx, "Eligibility evaluated",
		slog.Int64("customerID", customerID),
		slog.Int("creditScore", eval.Result.CreditScore),
		slog.Bool("approved", eval.Result.Approved))
	return eval, nil
}

func (s *loanService) CreateLoan(ctx context.Context, customerID int64, amount Money, interestRate float64, tenure int) (*Loan, *Evaluation, error) {
	s.logger.InfoContext(ctx, "Creating new loan", slog.Int64("customerID", customerID))

	eval, err := s.evaluate(ctx, customerID, amount, interestRate, tenure)
	if err != nil {
		return nil, nil, err
	}

	if !eval.Result.Approved {
		monitoring.RecordLoanCreated("rejected")
		s.logger.InfoContext(ctx, "Loan not approved based on eligibility check",
			slog.Int64("customerID", customerID),
			slog.Int("creditScore", eval.Result.CreditScore))
		return nil, eval, nil
	}

	startDate := s.now().Truncate(24 * time.Hour)
	newLoan := NewLoan(customerID, amount, tenure, eval.Result.CorrectedInterestRate, eval.Result.MonthlyInstallment, startDate)

	createdLoan, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		monitoring.RecordLoanCreated("error")
		s.logger.ErrorContext(ctx, "Failed to save approved loan", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: failed to save loan: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanCreated("approved")
	s.publishApprovedEvent(ctx, createdLoan, eval.Result.CreditScore)

	s.logger.InfoContext(ctx, "Loan created successfully",
		slog.Int64("loanID", createdLoan.ID),
		slog.Int64("customerID", customerID))
	return createdLoan, eval, nil
}

func (s *loanService) GetLoanDetail(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	if loanID <= 0 {
		return nil, nil, apperrors.NewValidationError("loan_id", "must be a positive number")
	}

	foundLoan, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, nil, fmt.Errorf("%w: loan %d", apperrors.ErrLoanNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, foundLoan.CustomerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get customer for loan",
			slog.Int64("loanID", loanID),
			slog.Int64("customerID", foundLoan.CustomerID),
			slog.Any("error", err))
		return nil, nil, err
	}

	return foundLoan, cust, nil
}

func (s *loanService) ListCustomerLoans(ctx context.Context, customerID int64) ([]*Loan, error) {
	exists, err := s.customerService.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer %d", apperrors.ErrCustomerNotFound, customerID)
	}

	loans, err := s.repo.GetLoansByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customer loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}

	return loans, nil
}

func (s *loanService) publishApprovedEvent(ctx context.Context, createdLoan *Loan, creditScore int) {
	evt := event.LoanApprovedEvent{
		Timestamp: time.Now(),
		Payload: event.LoanEventPayload{
			LoanID:           createdLoan.ID,
			CustomerID:       createdLoan.CustomerID,
			LoanAmount:       createdLoan.LoanAmount,
			Tenure:           createdLoan.Tenure,
			InterestRate:     createdLoan.InterestRate,
			MonthlyRepayment: createdLoan.MonthlyRepayment,
			CreditScore:      creditScore,
		},
	}

	if err := s.pub.PublishLoanApproved(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan approved event", slog.Any("error", err))
	}
}
