package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrCustomerNotFound), errors.Is(err, apperrors.ErrLoanNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid loanID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// CheckEligibility handles POST /check-eligibility
// @Summary Check loan eligibility
// @Description Scores the customer's loan history and reports whether the proposed loan would be approved, along with the corrected interest rate and monthly installment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CheckEligibilityRequest true "Loan proposal payload"
// @Success 200 {object} dto.EligibilityResponse "Eligibility evaluated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
// @Security BearerAuth
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckEligibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	eval, err := h.service.CheckEligibility(r.Context(), req.CustomerID, req.LoanAmount, req.InterestRate, req.Tenure)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to check eligibility", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewEligibilityResponse(eval, req.Tenure)
	h.logger.InfoContext(r.Context(), "Eligibility checked",
		slog.Int64("customerID", req.CustomerID),
		slog.Bool("approval", resp.Approval))
	respondJSON(w, http.StatusOK, resp)
}

// CreateLoan handles POST /create-loan
// @Summary Create a new loan
// @Description Runs the eligibility evaluation and, when approved, books the loan at the corrected interest rate. A rejected proposal returns 200 with loan_approved=false.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan proposal payload"
// @Success 201 {object} dto.CreateLoanResponse "Loan booked"
// @Success 200 {object} dto.CreateLoanResponse "Proposal rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdLoan, eval, err := h.service.CreateLoan(r.Context(), req.CustomerID, req.LoanAmount, req.InterestRate, req.Tenure)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to create loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCreateLoanResponse(createdLoan, eval)
	status := http.StatusOK
	if resp.LoanApproved {
		status = http.StatusCreated
		h.logger.InfoContext(r.Context(), "Loan created", slog.Int64("loanID", createdLoan.ID))
	} else {
		h.logger.InfoContext(r.Context(), "Loan proposal rejected", slog.Int64("customerID", req.CustomerID))
	}
	respondJSON(w, status, resp)
}

// GetLoan handles GET /view-loan/{loanID}
// @Summary Retrieve loan details
// @Description Retrieves a loan along with the customer who holds it.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.LoanDetailResponse "Loan details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID format"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainLoan, cust, err := h.service.GetLoanDetail(r.Context(), loanID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrLoanNotFound) && !errors.Is(err, apperrors.ErrCustomerNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get loan detail", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewLoanDetailResponse(domainLoan, cust)
	respondJSON(w, http.StatusOK, resp)
}

// ListCustomerLoans handles GET /view-loans/{customerID}
// @Summary List a customer's loans
// @Description Retrieves every loan held by a customer, with the number of repayments left on each.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CustomerLoanResponse "Loans retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customerID} [get]
// @Security BearerAuth
func (h *LoanHandler) ListCustomerLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	loans, err := h.service.ListCustomerLoans(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrCustomerNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to list customer loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	now := time.Now()
	resp := make([]dto.CustomerLoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = dto.NewCustomerLoanResponse(l, now)
	}

	h.logger.InfoContext(r.Context(), "Customer loans listed",
		slog.Int64("customerID", customerID),
		slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}
