package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositStatus is the crediting state of an on-chain deposit claim.
type DepositStatus string

const (
	DepositStatusUnconfirmed DepositStatus = "UNCONFIRMED"
	DepositStatusConfirmed   DepositStatus = "CONFIRMED"
	DepositStatusCredited    DepositStatus = "CREDITED"
)

// DepositClaim is a user's assertion that an on-chain transfer was made to
// the exchange wallet. TxHash is globally unique and acts as the idempotency
// key: a claim reaches CREDITED at most once, no matter how many times
// confirmation is attempted.
type DepositClaim struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	TxHash        string          `json:"tx_hash"`
	FromAddress   string          `json:"from_address"`
	ToAddress     string          `json:"to_address"`
	AmountStable  decimal.Decimal `json:"amount_stable"`
	Confirmations int64           `json:"confirmations"`
	Status        DepositStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	CreditedAt    *time.Time      `json:"credited_at,omitempty"`
}

// IsCredited returns true once the claim's amount has reached the wallet.
func (c *DepositClaim) IsCredited() bool {
	return c.Status == DepositStatusCredited
}
