package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stablecoin-exchange/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPBankGateway executes the fiat leg of a trade against the bank
// collaborator. Declines and unavailability are distinct outcomes: a
// decline is final, unavailability is retryable.
type HTTPBankGateway struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPBankGateway creates a bank gateway client.
func NewHTTPBankGateway(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPBankGateway {
	return &HTTPBankGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "bank_gateway").Logger(),
	}
}

type chargeRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
}

type payoutRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// ConfirmCharge verifies the buyer's fiat payment before stablecoin is
// credited.
func (g *HTTPBankGateway) ConfirmCharge(ctx context.Context, reference string, amount decimal.Decimal) error {
	body := chargeRequest{Reference: reference, Amount: amount.StringFixed(2)}
	return g.post(ctx, "/charges/confirm", body, reference)
}

// Payout sends the seller's fiat proceeds. Callers invoke this before
// committing the debit so a failure here rolls the ledger back.
func (g *HTTPBankGateway) Payout(ctx context.Context, account string, amount decimal.Decimal) error {
	body := payoutRequest{Account: account, Amount: amount.StringFixed(2)}
	return g.post(ctx, "/payouts", body, account)
}

func (g *HTTPBankGateway) post(ctx context.Context, path string, body any, subject string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperror.InternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperror.InternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error().Err(err).Str("path", path).Str("subject", subject).Msg("bank gateway unreachable")
		return apperror.ErrCollaboratorUnavailable("bank-gateway", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		g.log.Warn().Int("status", resp.StatusCode).Str("path", path).Str("subject", subject).Msg("bank gateway declined")
		return apperror.ErrPaymentDeclined()
	default:
		g.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("bank gateway returned server error")
		return apperror.ErrCollaboratorUnavailable("bank-gateway", fmt.Errorf("status %d", resp.StatusCode))
	}
}
