package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	e := New("LGR_001", "Insufficient stablecoin balance", http.StatusPaymentRequired)
	assert.Equal(t, "[LGR_001] Insufficient stablecoin balance", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("pg down"))
	assert.Contains(t, wrapped.Error(), "SYS_001")
	assert.Contains(t, wrapped.Error(), "pg down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := InternalError(fmt.Errorf("ping oracle: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestAppError_ErrorsAs(t *testing.T) {
	var err error = ErrInsufficientBalance()

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LGR_001", appErr.Code)
	assert.Equal(t, http.StatusPaymentRequired, appErr.HTTPStatus)
	assert.False(t, appErr.Retryable)
}

func TestErrCollaboratorUnavailable_IsRetryable(t *testing.T) {
	e := ErrCollaboratorUnavailable("confirmation-oracle", errors.New("timeout"))
	assert.True(t, e.Retryable)
	assert.Equal(t, "SYS_002", e.Code)
	assert.Equal(t, http.StatusServiceUnavailable, e.HTTPStatus)
}

func TestErrKYCValidation_CollectsViolations(t *testing.T) {
	violations := []FieldViolation{
		{Field: "national_id", Code: CodeInvalidNationalID, Message: "must be exactly 12 digits"},
		{Field: "date_of_birth", Code: CodeUnderage, Message: "must be at least 18 years old"},
	}
	e := ErrKYCValidation(violations)
	assert.Equal(t, "KYC_010", e.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.HTTPStatus)
	require.Len(t, e.Violations, 2)
	assert.Equal(t, "national_id", e.Violations[0].Field)
	assert.Equal(t, CodeUnderage, e.Violations[1].Code)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidAmount(), http.StatusBadRequest},
		{ErrInvalidRate(), http.StatusBadRequest},
		{ErrRateUnavailable(), http.StatusServiceUnavailable},
		{ErrInsufficientBalance(), http.StatusPaymentRequired},
		{ErrKYCRequired(), http.StatusForbidden},
		{ErrDuplicateDeposit("0xabc"), http.StatusConflict},
		{ErrBelowMinimumDeposit("10"), http.StatusBadRequest},
		{ErrPaymentDeclined(), http.StatusUnprocessableEntity},
		{ErrRateLimitExceeded(), http.StatusTooManyRequests},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.HTTPStatus, c.err.Code)
	}
}
