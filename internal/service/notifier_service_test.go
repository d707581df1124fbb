package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"stablecoin-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient implements HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestNotifierService_TradeSettled_Delivers(t *testing.T) {
	delivered := make(chan EventPayload, 1)
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			var payload EventPayload
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &payload)
			delivered <- payload
			return okResponse(), nil
		},
	}

	svc := NewNotifierService("https://events.example.com/sink", "signing-key", httpClient, newTestLogger())

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Kind:         domain.TradeKindBuy,
		AmountFiat:   decimal.RequireFromString("1000"),
		AmountStable: decimal.RequireFromString("11.305822"),
		Status:       domain.TransactionStatusSettled,
		SettledAt:    &now,
	}

	require.NoError(t, svc.TradeSettled(context.Background(), txn))

	select {
	case payload := <-delivered:
		assert.Equal(t, EventTradeSettled, payload.EventType)
		assert.Equal(t, txn.ID.String(), payload.Data.ResourceID)
		assert.Equal(t, string(domain.TransactionStatusSettled), payload.Data.Status)

		// Signature must cover the data block with the configured key.
		dataBytes, err := json.Marshal(payload.Data)
		require.NoError(t, err)
		mac := hmac.New(sha256.New, []byte("signing-key"))
		mac.Write(dataBytes)
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), payload.Signature)
	case <-time.After(2 * time.Second):
		t.Fatal("event delivery timed out")
	}
}

func TestNotifierService_DepositCredited_Delivers(t *testing.T) {
	delivered := make(chan EventPayload, 1)
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			var payload EventPayload
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &payload)
			delivered <- payload
			return okResponse(), nil
		},
	}

	svc := NewNotifierService("https://events.example.com/sink", "signing-key", httpClient, newTestLogger())

	claim := &domain.DepositClaim{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		TxHash:       "0xabc",
		AmountStable: decimal.RequireFromString("100"),
		Status:       domain.DepositStatusCredited,
	}

	require.NoError(t, svc.DepositCredited(context.Background(), claim))

	select {
	case payload := <-delivered:
		assert.Equal(t, EventDepositCredited, payload.EventType)
		assert.Equal(t, "0xabc", payload.Data.ResourceID)
	case <-time.After(2 * time.Second):
		t.Fatal("event delivery timed out")
	}
}

func TestNotifierService_NoSinkConfigured(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}

	svc := NewNotifierService("", "signing-key", httpClient, newTestLogger())

	record := &domain.KYCRecord{OwnerID: uuid.New(), Status: domain.KYCStatusApproved}
	assert.NoError(t, svc.KYCStatusChanged(context.Background(), record))
}

func TestNotifierService_RetriesOnFailure(t *testing.T) {
	attempts := make(chan int, 2)
	count := 0
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			count++
			attempts <- count
			if count == 1 {
				return &http.Response{
					StatusCode: 502,
					Body:       io.NopCloser(strings.NewReader("")),
				}, nil
			}
			return okResponse(), nil
		},
	}

	svc := NewNotifierService("https://events.example.com/sink", "signing-key", httpClient, newTestLogger()).(*notifierService)
	svc.async = false

	// Shrink the backoff so the retry test runs fast.
	orig := eventRetryIntervals
	eventRetryIntervals = []time.Duration{time.Millisecond}
	defer func() { eventRetryIntervals = orig }()

	record := &domain.KYCRecord{OwnerID: uuid.New(), Status: domain.KYCStatusRejected}
	require.NoError(t, svc.KYCStatusChanged(context.Background(), record))
	assert.Equal(t, 2, count)
}
