package service

import (
	"context"
	"fmt"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService. It is the only component
// that mutates wallet balances. Credit and Debit must be called inside a
// database transaction that holds the wallet row lock; the caller owns
// commit/rollback so a failed settlement leaves no partial mutation.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(walletRepo ports.WalletRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{walletRepo: walletRepo, log: log}
}

// Credit adds stablecoin to the owner's wallet. The wallet is created on
// first credit. Deposits and buy credits both raise totalDeposited so the
// balance identity holds after every mutation.
func (s *LedgerServiceImpl) Credit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, reason ports.LedgerReason) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.lockOrCreate(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Add(amount)
	wallet.TotalDeposited = wallet.TotalDeposited.Add(amount)
	wallet.UpdatedAt = time.Now().UTC()

	if err := s.applyMutation(ctx, tx, wallet); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID.String()).
		Str("amount", amount.String()).
		Str("reason", string(reason)).
		Str("balance", wallet.Balance.String()).
		Msg("wallet credited")
	return wallet, nil
}

// Debit removes stablecoin from the owner's wallet. The balance check and the
// mutation happen under the same row lock, so concurrent debits cannot
// jointly overdraw.
func (s *LedgerServiceImpl) Debit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, reason ports.LedgerReason) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.GetByOwnerIDForUpdate(ctx, tx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrInsufficientBalance()
	}
	if amount.GreaterThan(wallet.Balance) {
		return nil, apperror.ErrInsufficientBalance()
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(amount)
	wallet.UpdatedAt = time.Now().UTC()

	if err := s.applyMutation(ctx, tx, wallet); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID.String()).
		Str("amount", amount.String()).
		Str("reason", string(reason)).
		Str("balance", wallet.Balance.String()).
		Msg("wallet debited")
	return wallet, nil
}

// BalanceOf returns a display-only snapshot of the owner's balance. It takes
// no lock and must never be used to authorize a mutation; a missing wallet
// reads as zero.
func (s *LedgerServiceImpl) BalanceOf(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, nil
	}
	return wallet.Balance, nil
}

func (s *LedgerServiceImpl) lockOrCreate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwnerIDForUpdate(ctx, tx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = domain.NewWallet(ownerID)
	if err := s.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	return wallet, nil
}

func (s *LedgerServiceImpl) applyMutation(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error {
	if !wallet.Consistent() {
		return apperror.InternalError(fmt.Errorf("wallet %s violates balance identity", wallet.ID))
	}
	if wallet.Balance.IsNegative() {
		return apperror.ErrInsufficientBalance()
	}
	if err := s.walletRepo.UpdateBalances(ctx, tx, wallet); err != nil {
		return apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	return nil
}
