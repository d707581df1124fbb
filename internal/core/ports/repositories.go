package ports

import (
	"context"

	"stablecoin-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks so the wallet
// row stays locked for the duration of a settlement.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	GetByOwnerIDForUpdate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// TransactionRepository defines persistence operations for trade transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, ownerID uuid.UUID) (*TradeStats, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	OwnerID  uuid.UUID
	Status   *domain.TransactionStatus
	Kind     *domain.TradeKind
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// TradeStats holds aggregated trade figures for an owner.
type TradeStats struct {
	TotalTrades      int64
	Settled          int64
	Rejected         int64
	BuyVolumeStable  decimal.Decimal // Stablecoin credited by settled buys
	SellVolumeStable decimal.Decimal // Stablecoin debited by settled sells
	FiatSpent        decimal.Decimal // Net payable across settled buys
	FiatReceived     decimal.Decimal // Net paid out across settled sells
}

// DepositRepository defines persistence for on-chain deposit claims.
// The tx_hash uniqueness constraint lives at this layer.
type DepositRepository interface {
	Create(ctx context.Context, tx pgx.Tx, claim *domain.DepositClaim) error
	GetByTxHash(ctx context.Context, txHash string) (*domain.DepositClaim, error)
	GetByTxHashForUpdate(ctx context.Context, tx pgx.Tx, txHash string) (*domain.DepositClaim, error)
	Update(ctx context.Context, tx pgx.Tx, claim *domain.DepositClaim) error
	SumCreditedByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

// KYCRepository defines persistence for identity records, one per owner.
type KYCRepository interface {
	Upsert(ctx context.Context, record *domain.KYCRecord) error
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.KYCRecord, error)
	UpdateStatus(ctx context.Context, record *domain.KYCRecord) error
}

// AuditRepository persists the compliance audit trail.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
