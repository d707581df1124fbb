package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeKind is the direction of a trade.
type TradeKind string

const (
	TradeKindBuy  TradeKind = "BUY"
	TradeKindSell TradeKind = "SELL"
)

// TransactionStatus is the lifecycle state of a trade transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusSettled  TransactionStatus = "SETTLED"
	TransactionStatusRejected TransactionStatus = "REJECTED"
)

// Transaction is the settlement record for a buy or sell trade. It is
// immutable once it reaches a terminal status.
type Transaction struct {
	ID                  uuid.UUID         `json:"id"`
	OwnerID             uuid.UUID         `json:"owner_id"`
	Kind                TradeKind         `json:"kind"`
	AmountFiat          decimal.Decimal   `json:"amount_fiat"`
	AmountStable        decimal.Decimal   `json:"amount_stable"`
	Rate                decimal.Decimal   `json:"rate"`
	PlatformFee         decimal.Decimal   `json:"platform_fee"`
	NetworkFee          decimal.Decimal   `json:"network_fee"`
	TotalFee            decimal.Decimal   `json:"total_fee"`
	NetAmount           decimal.Decimal   `json:"net_amount"`
	CounterpartyAccount string            `json:"counterparty_account"`
	ExchangeWallet      string            `json:"exchange_wallet"`
	Status              TransactionStatus `json:"status"`
	FailureCode         *string           `json:"failure_code,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	SettledAt           *time.Time        `json:"settled_at,omitempty"`
}

// IsTerminal returns true once the transaction can no longer change.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSettled || t.Status == TransactionStatusRejected
}
