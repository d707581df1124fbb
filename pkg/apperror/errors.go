package apperror

import (
	"fmt"
	"net/http"
)

// FieldViolation describes a single invalid field in a submission.
type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string           `json:"error_code"`
	Message    string           `json:"message"`
	HTTPStatus int              `json:"-"`
	Retryable  bool             `json:"retryable,omitempty"`
	Violations []FieldViolation `json:"violations,omitempty"`
	Err        error            `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Pricing (PRC) ----

func ErrInvalidAmount() *AppError {
	return New("PRC_001", "Amount must be a finite, non-negative number", http.StatusBadRequest)
}

func ErrInvalidRate() *AppError {
	return New("PRC_002", "Conversion rate must be positive", http.StatusBadRequest)
}

func ErrRateUnavailable() *AppError {
	return New("PRC_003", "Conversion rate is stale or unavailable", http.StatusServiceUnavailable)
}

// ---- Ledger (LGR) ----

func ErrInsufficientBalance() *AppError {
	return New("LGR_001", "Insufficient stablecoin balance", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("LGR_002", "Wallet not found", http.StatusNotFound)
}

// ---- KYC ----

func ErrKYCRequired() *AppError {
	return New("KYC_001", "Identity verification must be approved before trading", http.StatusForbidden)
}

// Field violation codes used inside ErrKYCValidation.
const (
	CodeInvalidNationalID = "KYC_002"
	CodeInvalidTaxID      = "KYC_003"
	CodeUnderage          = "KYC_004"
	CodeInvalidName       = "KYC_005"
	CodeInvalidAddress    = "KYC_006"
)

// ErrKYCValidation bundles every field violation of a KYC submission so the
// caller can render them all at once.
func ErrKYCValidation(violations []FieldViolation) *AppError {
	e := New("KYC_010", "Identity submission has invalid fields", http.StatusUnprocessableEntity)
	e.Violations = violations
	return e
}

func ErrKYCInvalidTransition(from string) *AppError {
	return New("KYC_011", fmt.Sprintf("Operation not allowed while identity record is %s", from), http.StatusConflict)
}

func ErrKYCRecordNotFound() *AppError {
	return New("KYC_012", "No identity record for this owner", http.StatusNotFound)
}

// ---- Deposits (DEP) ----

func ErrDuplicateDeposit(txHash string) *AppError {
	return New("DEP_001", fmt.Sprintf("Deposit %s was already credited", txHash), http.StatusConflict)
}

func ErrBelowMinimumDeposit(minimum string) *AppError {
	return New("DEP_002", fmt.Sprintf("Deposit amount is below the %s minimum", minimum), http.StatusBadRequest)
}

func ErrDepositNotFound() *AppError {
	return New("DEP_003", "Deposit claim not found", http.StatusNotFound)
}

// ---- Trades (TRD) ----

func ErrPaymentDeclined() *AppError {
	return New("TRD_001", "Bank gateway declined the fiat leg", http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInsufficientScope() *AppError {
	return New("AUTH_002", "Token lacks the required scope", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrCollaboratorUnavailable marks a timed-out or unreachable external
// collaborator. It is the only retryable error kind; the core never retries
// internally, it only signals retryability to the caller.
func ErrCollaboratorUnavailable(name string, err error) *AppError {
	e := Wrap("SYS_002", fmt.Sprintf("External collaborator %s unavailable", name), http.StatusServiceUnavailable, err)
	e.Retryable = true
	return e
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
