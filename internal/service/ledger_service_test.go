package service

import (
	"context"
	"testing"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/internal/core/ports/mocks"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	walletRepo *mocks.MockWalletRepository
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.walletRepo, zerolog.Nop())
	return d
}

func existingWallet(ownerID uuid.UUID, balance string) *domain.Wallet {
	b := decimal.RequireFromString(balance)
	return &domain.Wallet{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Balance:        b,
		TotalDeposited: b,
		TotalWithdrawn: decimal.Zero,
	}
}

func TestLedgerService_Credit_ExistingWallet(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	tx := &mockTx{}

	d.walletRepo.EXPECT().GetByOwnerIDForUpdate(ctx, tx, ownerID).Return(existingWallet(ownerID, "50"), nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, gomock.Any()).Return(nil)

	wallet, err := d.svc.Credit(ctx, tx, ownerID, decimal.RequireFromString("100"), ports.LedgerReasonDeposit)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("150")))
	assert.True(t, wallet.TotalDeposited.Equal(decimal.RequireFromString("150")))
	assert.True(t, wallet.Consistent())
}

func TestLedgerService_Credit_CreatesWalletOnFirstCredit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	tx := &mockTx{}

	d.walletRepo.EXPECT().GetByOwnerIDForUpdate(ctx, tx, ownerID).Return(nil, nil)
	d.walletRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, gomock.Any()).Return(nil)

	wallet, err := d.svc.Credit(ctx, tx, ownerID, decimal.RequireFromString("25.5"), ports.LedgerReasonBuyCredit)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("25.5")))
	assert.True(t, wallet.TotalDeposited.Equal(decimal.RequireFromString("25.5")))
}

func TestLedgerService_Credit_RejectsNonPositiveAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	tx := &mockTx{}
	_, err := d.svc.Credit(context.Background(), tx, uuid.New(), decimal.Zero, ports.LedgerReasonDeposit)
	assertCode(t, err, "PRC_001")
}

func TestLedgerService_Debit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	tx := &mockTx{}

	d.walletRepo.EXPECT().GetByOwnerIDForUpdate(ctx, tx, ownerID).Return(existingWallet(ownerID, "10"), nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, gomock.Any()).Return(nil)

	wallet, err := d.svc.Debit(ctx, tx, ownerID, decimal.RequireFromString("4"), ports.LedgerReasonSellDebit)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("6")))
	assert.True(t, wallet.TotalWithdrawn.Equal(decimal.RequireFromString("4")))
	assert.True(t, wallet.Consistent())
}

func TestLedgerService_Debit_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	tx := &mockTx{}

	d.walletRepo.EXPECT().GetByOwnerIDForUpdate(ctx, tx, ownerID).Return(existingWallet(ownerID, "3.0"), nil)

	_, err := d.svc.Debit(ctx, tx, ownerID, decimal.RequireFromString("5.0"), ports.LedgerReasonSellDebit)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LGR_001", appErr.Code)
}

func TestLedgerService_Debit_MissingWallet(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	tx := &mockTx{}

	d.walletRepo.EXPECT().GetByOwnerIDForUpdate(ctx, tx, ownerID).Return(nil, nil)

	_, err := d.svc.Debit(ctx, tx, ownerID, decimal.RequireFromString("1"), ports.LedgerReasonSellDebit)
	assertCode(t, err, "LGR_001")
}

func TestLedgerService_BalanceOf(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.walletRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(existingWallet(ownerID, "42.123456"), nil)
	balance, err := d.svc.BalanceOf(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("42.123456")))

	d.walletRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(nil, nil)
	balance, err = d.svc.BalanceOf(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
