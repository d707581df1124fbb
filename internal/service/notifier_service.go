package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// eventRetryIntervals spaces out redelivery attempts after a failed push.
var eventRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Outbound event types consumed by the notification/UI layer.
const (
	EventTradeSettled     = "trade.settled"
	EventDepositCredited  = "deposit.credited"
	EventKYCStatusChanged = "kyc.status_changed"
)

// EventPayload is the JSON structure pushed to the configured event sink.
// Delivery is at-least-once; consumers deduplicate by resource_id.
type EventPayload struct {
	EventType string           `json:"event_type"`
	Data      EventPayloadData `json:"data"`
	Signature string           `json:"signature"`
}

// EventPayloadData carries the resource snapshot inside an event.
type EventPayloadData struct {
	ResourceID   string          `json:"resource_id"`
	OwnerID      string          `json:"owner_id"`
	Status       string          `json:"status"`
	AmountStable decimal.Decimal `json:"amount_stable,omitempty"`
	AmountFiat   decimal.Decimal `json:"amount_fiat,omitempty"`
	Timestamp    int64           `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// notifierService implements ports.NotifierService by pushing signed events
// to a single configured sink URL.
type notifierService struct {
	sinkURL    string
	signingKey []byte
	httpClient HTTPClient
	log        zerolog.Logger
	async      bool
}

// NewNotifierService creates a notifier pushing to sinkURL. An empty sinkURL
// disables delivery; every emit becomes a logged no-op.
func NewNotifierService(sinkURL, signingKey string, httpClient HTTPClient, log zerolog.Logger) ports.NotifierService {
	return &notifierService{
		sinkURL:    sinkURL,
		signingKey: []byte(signingKey),
		httpClient: httpClient,
		log:        log,
		async:      true,
	}
}

func (s *notifierService) TradeSettled(ctx context.Context, transaction *domain.Transaction) error {
	return s.emit(EventTradeSettled, EventPayloadData{
		ResourceID:   transaction.ID.String(),
		OwnerID:      transaction.OwnerID.String(),
		Status:       string(transaction.Status),
		AmountStable: transaction.AmountStable,
		AmountFiat:   transaction.AmountFiat,
		Timestamp:    time.Now().Unix(),
	})
}

func (s *notifierService) DepositCredited(ctx context.Context, claim *domain.DepositClaim) error {
	return s.emit(EventDepositCredited, EventPayloadData{
		ResourceID:   claim.TxHash,
		OwnerID:      claim.OwnerID.String(),
		Status:       string(claim.Status),
		AmountStable: claim.AmountStable,
		Timestamp:    time.Now().Unix(),
	})
}

func (s *notifierService) KYCStatusChanged(ctx context.Context, record *domain.KYCRecord) error {
	return s.emit(EventKYCStatusChanged, EventPayloadData{
		ResourceID: record.OwnerID.String(),
		OwnerID:    record.OwnerID.String(),
		Status:     string(record.Status),
		Timestamp:  time.Now().Unix(),
	})
}

func (s *notifierService) emit(eventType string, data EventPayloadData) error {
	if s.sinkURL == "" {
		s.log.Debug().Str("event_type", eventType).Msg("event sink not configured, skipping")
		return nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("event: failed to marshal data")
		return err
	}

	payload := EventPayload{
		EventType: eventType,
		Data:      data,
		Signature: s.sign(dataBytes),
	}

	if s.async {
		go s.deliverWithRetries(payload)
		return nil
	}
	return s.deliverWithRetries(payload)
}

func (s *notifierService) sign(data []byte) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// deliverWithRetries attempts delivery, backing off between attempts.
func (s *notifierService) deliverWithRetries(payload EventPayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", payload.EventType).Msg("event: failed to marshal payload")
		return err
	}

	resourceID := payload.Data.ResourceID
	for attempt := 0; attempt <= len(eventRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(eventRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, s.sinkURL, bytes.NewReader(payloadBytes))
		if err != nil {
			s.log.Error().Err(err).Str("resource_id", resourceID).Int("attempt", attempt+1).Msg("event: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.log.Warn().Err(err).Str("resource_id", resourceID).Int("attempt", attempt+1).Msg("event: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().Str("resource_id", resourceID).Str("event_type", payload.EventType).Int("attempt", attempt+1).Msg("event: delivered")
			return nil
		}
		s.log.Warn().Str("resource_id", resourceID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("event: non-2xx response, retrying")
	}

	s.log.Error().Str("resource_id", resourceID).Str("event_type", payload.EventType).Msg("event: all retry attempts exhausted")
	return nil
}
