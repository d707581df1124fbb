package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankGateway_ConfirmCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges/confirm", r.URL.Path)
		var body chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body.Reference)
		assert.Equal(t, "1040.00", body.Amount)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := NewHTTPBankGateway(srv.URL, time.Second, newTestLogger())

	err := gw.ConfirmCharge(context.Background(), "ref-1", decimal.RequireFromString("1040.00"))
	require.NoError(t, err)
}

func TestBankGateway_DeclineIsFinal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	gw := NewHTTPBankGateway(srv.URL, time.Second, newTestLogger())

	err := gw.ConfirmCharge(context.Background(), "ref-1", decimal.NewFromInt(100))
	assertCode(t, err, "TRD_001")
}

func TestBankGateway_PayoutServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gw := NewHTTPBankGateway(srv.URL, time.Second, newTestLogger())

	err := gw.Payout(context.Background(), "acct-9", decimal.RequireFromString("410.62"))
	assertCode(t, err, "SYS_002")
}

func TestBankGateway_PayoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payouts", r.URL.Path)
		var body payoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "acct-9", body.Account)
		assert.Equal(t, "410.62", body.Amount)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	gw := NewHTTPBankGateway(srv.URL, time.Second, newTestLogger())

	err := gw.Payout(context.Background(), "acct-9", decimal.RequireFromString("410.62"))
	require.NoError(t, err)
}
