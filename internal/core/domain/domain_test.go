package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewWallet_StartsEmptyAndConsistent(t *testing.T) {
	w := NewWallet(uuid.New())
	assert.True(t, w.Balance.IsZero())
	assert.True(t, w.TotalDeposited.IsZero())
	assert.True(t, w.TotalWithdrawn.IsZero())
	assert.True(t, w.Consistent())
}

func TestWallet_Consistent(t *testing.T) {
	w := NewWallet(uuid.New())
	w.TotalDeposited = decimal.RequireFromString("150.5")
	w.TotalWithdrawn = decimal.RequireFromString("50.5")
	w.Balance = decimal.RequireFromString("100")
	assert.True(t, w.Consistent())

	w.Balance = decimal.RequireFromString("99")
	assert.False(t, w.Consistent())
}

func TestTransaction_IsTerminal(t *testing.T) {
	tx := &Transaction{Status: TransactionStatusPending}
	assert.False(t, tx.IsTerminal())

	tx.Status = TransactionStatusSettled
	assert.True(t, tx.IsTerminal())

	tx.Status = TransactionStatusRejected
	assert.True(t, tx.IsTerminal())
}

func TestDepositClaim_IsCredited(t *testing.T) {
	c := &DepositClaim{Status: DepositStatusUnconfirmed}
	assert.False(t, c.IsCredited())

	c.Status = DepositStatusConfirmed
	assert.False(t, c.IsCredited())

	c.Status = DepositStatusCredited
	assert.True(t, c.IsCredited())
}

func TestKYCRecord_Transitions(t *testing.T) {
	r := &KYCRecord{Status: KYCStatusPending}
	assert.True(t, r.CanSubmit())
	assert.False(t, r.CanReview())

	r.Status = KYCStatusUnderReview
	assert.False(t, r.CanSubmit())
	assert.True(t, r.CanReview())

	r.Status = KYCStatusRejected
	assert.True(t, r.CanSubmit())

	r.Status = KYCStatusApproved
	assert.False(t, r.CanSubmit())
	assert.False(t, r.CanReview())
}
