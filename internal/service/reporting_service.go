package service

import (
	"context"
	"fmt"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReportingServiceImpl implements ports.ReportingService: read-only history,
// stats, and the offline reconciliation check.
type ReportingServiceImpl struct {
	txRepo      ports.TransactionRepository
	walletRepo  ports.WalletRepository
	depositRepo ports.DepositRepository
	log         zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	depositRepo ports.DepositRepository,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		txRepo:      txRepo,
		walletRepo:  walletRepo,
		depositRepo: depositRepo,
		log:         log,
	}
}

// ListTransactions returns a filtered, paginated page of the owner's trades
// plus the total row count.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	items, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return items, total, nil
}

// GetStats returns aggregated trade figures for the owner.
func (s *ReportingServiceImpl) GetStats(ctx context.Context, ownerID uuid.UUID) (*ports.TradeStats, error) {
	stats, err := s.txRepo.GetStats(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get trade stats: %w", err))
	}
	return stats, nil
}

// GetWalletBalance returns the stored balance snapshot; owners without a
// wallet read as zero.
func (s *ReportingServiceImpl) GetWalletBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, nil
	}
	return wallet.Balance, nil
}

// Reconcile recomputes the owner's balance from credited deposits and settled
// trade volumes and compares it against the stored wallet balance. This is a
// consistency check only: drift is reported, never auto-corrected, and the
// stored balance remains authoritative.
func (s *ReportingServiceImpl) Reconcile(ctx context.Context, ownerID uuid.UUID) (*ports.ReconciliationReport, error) {
	wallet, err := s.walletRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	creditedDeposits, err := s.depositRepo.SumCreditedByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum credited deposits: %w", err))
	}

	stats, err := s.txRepo.GetStats(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get trade stats: %w", err))
	}

	derived := creditedDeposits.Add(stats.BuyVolumeStable).Sub(stats.SellVolumeStable)
	drift := wallet.Balance.Sub(derived)

	report := &ports.ReconciliationReport{
		OwnerID:          ownerID,
		StoredBalance:    wallet.Balance,
		DerivedBalance:   derived,
		CreditedDeposits: creditedDeposits,
		BuyVolume:        stats.BuyVolumeStable,
		SellVolume:       stats.SellVolumeStable,
		Drift:            drift,
		Consistent:       drift.IsZero(),
	}

	if !report.Consistent {
		s.log.Error().
			Str("owner_id", ownerID.String()).
			Str("stored", report.StoredBalance.String()).
			Str("derived", report.DerivedBalance.String()).
			Str("drift", report.Drift.String()).
			Msg("ledger reconciliation drift detected")
	}
	return report, nil
}
