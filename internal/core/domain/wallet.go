package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's stablecoin balance. Only the ledger service mutates
// it, and every mutation preserves Balance == TotalDeposited - TotalWithdrawn.
type Wallet struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewWallet creates an empty wallet for an owner. Wallets are created lazily
// on the first successful deposit or buy credit and are never deleted.
func NewWallet(ownerID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Balance:        decimal.Zero,
		TotalDeposited: decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Consistent reports whether the balance identity holds.
func (w *Wallet) Consistent() bool {
	return w.Balance.Equal(w.TotalDeposited.Sub(w.TotalWithdrawn))
}
