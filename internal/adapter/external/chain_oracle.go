package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stablecoin-exchange/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPConfirmationOracle queries the chain indexer for how many
// confirmations an on-chain transfer has accumulated.
type HTTPConfirmationOracle struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPConfirmationOracle creates a chain oracle client.
func NewHTTPConfirmationOracle(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPConfirmationOracle {
	return &HTTPConfirmationOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "chain_oracle").Logger(),
	}
}

type confirmationsResponse struct {
	TxHash        string `json:"tx_hash"`
	Confirmations int64  `json:"confirmations"`
}

// ConfirmationsFor returns the confirmation count for txHash. An unknown
// transfer reads as zero confirmations, not an error.
func (o *HTTPConfirmationOracle) ConfirmationsFor(ctx context.Context, txHash string) (int64, error) {
	endpoint := fmt.Sprintf("%s/transfers/%s/confirmations", o.baseURL, url.PathEscape(txHash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, apperror.InternalError(err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Error().Err(err).Str("tx_hash", txHash).Msg("chain oracle unreachable")
		return 0, apperror.ErrCollaboratorUnavailable("chain-oracle", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, nil
	case resp.StatusCode != http.StatusOK:
		o.log.Error().Int("status", resp.StatusCode).Str("tx_hash", txHash).Msg("chain oracle returned non-200")
		return 0, apperror.ErrCollaboratorUnavailable("chain-oracle", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body confirmationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, apperror.ErrCollaboratorUnavailable("chain-oracle", fmt.Errorf("decode confirmations response: %w", err))
	}
	if body.Confirmations < 0 {
		return 0, apperror.ErrCollaboratorUnavailable("chain-oracle", fmt.Errorf("negative confirmation count %d", body.Confirmations))
	}
	return body.Confirmations, nil
}
