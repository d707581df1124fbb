package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() zerolog.Logger {
	return zerolog.Nop()
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

type memRateCache struct {
	quote *ports.RateQuote
	sets  int
}

func (c *memRateCache) Get(_ context.Context) (*ports.RateQuote, error) { return c.quote, nil }
func (c *memRateCache) Set(_ context.Context, q *ports.RateQuote, _ time.Duration) error {
	c.quote = q
	c.sets++
	return nil
}

func TestRateOracle_FetchesAndCaches(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/rates/current", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rate":"88.45","as_of":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	}))
	defer srv.Close()

	cache := &memRateCache{}
	oracle := NewHTTPRateOracle(srv.URL, time.Second, cache, 30*time.Second, 5*time.Minute, newTestLogger())

	quote, err := oracle.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("88.45")))
	assert.Equal(t, 1, cache.sets)

	// Second call is served from cache.
	_, err = oracle.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestRateOracle_StaleQuoteIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		old := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		_, _ = w.Write([]byte(`{"rate":"88.45","as_of":"` + old + `"}`))
	}))
	defer srv.Close()

	oracle := NewHTTPRateOracle(srv.URL, time.Second, nil, 30*time.Second, 5*time.Minute, newTestLogger())

	_, err := oracle.CurrentRate(context.Background())
	assertCode(t, err, "PRC_003")
}

func TestRateOracle_StaleCacheEntryRefetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rate":"90.10","as_of":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	}))
	defer srv.Close()

	cache := &memRateCache{quote: &ports.RateQuote{
		Rate: decimal.RequireFromString("88.45"),
		AsOf: time.Now().Add(-time.Hour),
	}}
	oracle := NewHTTPRateOracle(srv.URL, time.Second, cache, 30*time.Second, 5*time.Minute, newTestLogger())

	quote, err := oracle.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.RequireFromString("90.10")))
}

func TestRateOracle_UnreachableIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening

	oracle := NewHTTPRateOracle(srv.URL, time.Second, nil, 30*time.Second, 5*time.Minute, newTestLogger())

	_, err := oracle.CurrentRate(context.Background())
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SYS_002", appErr.Code)
	assert.True(t, appErr.Retryable)
}

func TestRateOracle_BadRatePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rate":"-1","as_of":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	}))
	defer srv.Close()

	oracle := NewHTTPRateOracle(srv.URL, time.Second, nil, 30*time.Second, 5*time.Minute, newTestLogger())

	_, err := oracle.CurrentRate(context.Background())
	assertCode(t, err, "PRC_003")
}
