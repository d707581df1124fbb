package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateCache is the quote cache the oracle consults before going over the
// wire. The Redis adapter satisfies it; a nil cache disables caching.
type RateCache interface {
	Get(ctx context.Context) (*ports.RateQuote, error)
	Set(ctx context.Context, quote *ports.RateQuote, ttl time.Duration) error
}

// HTTPRateOracle fetches the fiat-per-stablecoin rate from the rate
// collaborator. Quotes older than maxStaleness are treated as unavailable
// rather than silently used.
type HTTPRateOracle struct {
	baseURL      string
	client       *http.Client
	cache        RateCache
	cacheTTL     time.Duration
	maxStaleness time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewHTTPRateOracle creates a rate oracle client.
func NewHTTPRateOracle(baseURL string, timeout time.Duration, cache RateCache, cacheTTL, maxStaleness time.Duration, log zerolog.Logger) *HTTPRateOracle {
	return &HTTPRateOracle{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		cache:        cache,
		cacheTTL:     cacheTTL,
		maxStaleness: maxStaleness,
		log:          log.With().Str("component", "rate_oracle").Logger(),
		now:          time.Now,
	}
}

type rateResponse struct {
	Rate string    `json:"rate"`
	AsOf time.Time `json:"as_of"`
}

// CurrentRate returns the freshest known quote. Cache hits are served
// without a network call; misses fetch, validate staleness, and backfill
// the cache.
func (o *HTTPRateOracle) CurrentRate(ctx context.Context) (*ports.RateQuote, error) {
	if o.cache != nil {
		cached, err := o.cache.Get(ctx)
		if err != nil {
			o.log.Warn().Err(err).Msg("rate cache read failed, falling through to oracle")
		} else if cached != nil && o.fresh(cached) {
			return cached, nil
		}
	}

	quote, err := o.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if !o.fresh(quote) {
		return nil, apperror.ErrRateUnavailable()
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, quote, o.cacheTTL); err != nil {
			o.log.Warn().Err(err).Msg("rate cache write failed")
		}
	}
	return quote, nil
}

func (o *HTTPRateOracle) fresh(quote *ports.RateQuote) bool {
	return o.now().Sub(quote.AsOf) <= o.maxStaleness
}

func (o *HTTPRateOracle) fetch(ctx context.Context) (*ports.RateQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/rates/current", nil)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Error().Err(err).Msg("rate oracle unreachable")
		return nil, apperror.ErrCollaboratorUnavailable("rate-oracle", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		o.log.Error().Int("status", resp.StatusCode).Msg("rate oracle returned non-200")
		return nil, apperror.ErrRateUnavailable()
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.ErrCollaboratorUnavailable("rate-oracle", fmt.Errorf("decode rate response: %w", err))
	}

	rate, err := decimal.NewFromString(body.Rate)
	if err != nil || !rate.IsPositive() {
		o.log.Error().Str("rate", body.Rate).Msg("rate oracle returned unusable rate")
		return nil, apperror.ErrRateUnavailable()
	}

	return &ports.RateQuote{Rate: rate, AsOf: body.AsOf}, nil
}
