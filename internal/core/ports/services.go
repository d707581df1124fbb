package ports

import (
	"context"
	"time"

	"stablecoin-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Collaborator Ports (external systems, not implemented by the core) ---

// RateQuote is a fiat-per-stablecoin rate with its observation time.
type RateQuote struct {
	Rate decimal.Decimal
	AsOf time.Time
}

// RateOracle supplies the current conversion rate. A stale or unreachable
// oracle surfaces as RateUnavailable to callers.
type RateOracle interface {
	CurrentRate(ctx context.Context) (*RateQuote, error)
}

// ConfirmationOracle reports how many on-chain confirmations a transfer has.
type ConfirmationOracle interface {
	ConfirmationsFor(ctx context.Context, txHash string) (int64, error)
}

// BankGateway executes the fiat leg of a trade. Both calls are synchronous
// and bounded by a timeout; expiry maps to CollaboratorUnavailable.
type BankGateway interface {
	// ConfirmCharge verifies the buyer's fiat payment for a buy trade.
	ConfirmCharge(ctx context.Context, reference string, amount decimal.Decimal) error
	// Payout sends the seller's fiat proceeds for a sell trade.
	Payout(ctx context.Context, account string, amount decimal.Decimal) error
}

// DepositMarker is the Redis fast path for deposit idempotency: once a claim
// is credited the marker short-circuits repeated confirm calls. The database
// row remains authoritative.
type DepositMarker interface {
	IsCredited(ctx context.Context, txHash string) (bool, error)
	MarkCredited(ctx context.Context, txHash string, ttl time.Duration) error
}

// TokenService validates bearer tokens issued by the external identity
// provider. Generate exists for tooling and tests.
type TokenService interface {
	Generate(ownerID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed identity claims. Scope is empty on owner
// tokens; second-party tokens (the external KYC reviewer) carry one.
type TokenClaims struct {
	OwnerID uuid.UUID
	Scope   string
}

// --- Service Ports (Business Logic) ---

// LedgerReason labels why a balance moved; it drives which running total the
// mutation updates and is carried on outbound events.
type LedgerReason string

const (
	LedgerReasonDeposit   LedgerReason = "deposit"
	LedgerReasonBuyCredit LedgerReason = "buy-credit"
	LedgerReasonSellDebit LedgerReason = "sell-debit"
)

// LedgerService owns all wallet balance mutations. Credit and Debit must run
// inside a database transaction holding the wallet row lock; BalanceOf is a
// display-only snapshot and must never authorize a mutation.
type LedgerService interface {
	Credit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, reason LedgerReason) (*domain.Wallet, error)
	Debit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, reason LedgerReason) (*domain.Wallet, error)
	BalanceOf(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

// TradeService settles buy and sell trades.
type TradeService interface {
	Execute(ctx context.Context, req TradeRequest) (*domain.Transaction, error)
}

// TradeRequest holds validated input for trade settlement.
type TradeRequest struct {
	OwnerID             uuid.UUID
	Kind                domain.TradeKind
	AmountFiat          decimal.Decimal
	Rate                decimal.Decimal
	CounterpartyAccount string
	ExchangeWallet      string
}

// DepositService validates deposit claims and credits them once confirmed.
type DepositService interface {
	SubmitClaim(ctx context.Context, req SubmitDepositRequest) (*domain.DepositClaim, error)
	Confirm(ctx context.Context, ownerID uuid.UUID, txHash string) (*domain.DepositClaim, error)
}

// SubmitDepositRequest holds validated input for a deposit claim.
type SubmitDepositRequest struct {
	OwnerID      uuid.UUID
	TxHash       string
	FromAddress  string
	ToAddress    string
	AmountStable decimal.Decimal
}

// KYCService drives the identity-verification state machine.
type KYCService interface {
	Submit(ctx context.Context, req SubmitKYCRequest) (*domain.KYCRecord, error)
	Review(ctx context.Context, req ReviewKYCRequest) (*domain.KYCRecord, error)
	Status(ctx context.Context, ownerID uuid.UUID) (*domain.KYCRecord, error)
	IsApproved(ctx context.Context, ownerID uuid.UUID) (bool, error)
}

// SubmitKYCRequest holds the raw identity submission fields.
type SubmitKYCRequest struct {
	OwnerID     uuid.UUID
	FullName    string
	DateOfBirth string // ISO date, validated by the service
	NationalID  string
	TaxID       string
	Address     string
}

// ReviewKYCRequest carries the external reviewer's decision.
type ReviewKYCRequest struct {
	OwnerID         uuid.UUID
	Approve         bool
	RejectionReason string
}

// ReportingService serves read-only dashboards and the offline
// reconciliation check.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, ownerID uuid.UUID) (*TradeStats, error)
	GetWalletBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	Reconcile(ctx context.Context, ownerID uuid.UUID) (*ReconciliationReport, error)
}

// ReconciliationReport compares the stored wallet balance against a
// recomputation from history. Consistency-check only: drift is reported,
// never auto-corrected, and the stored balance stays authoritative.
type ReconciliationReport struct {
	OwnerID          uuid.UUID       `json:"owner_id"`
	StoredBalance    decimal.Decimal `json:"stored_balance"`
	DerivedBalance   decimal.Decimal `json:"derived_balance"`
	CreditedDeposits decimal.Decimal `json:"credited_deposits"`
	BuyVolume        decimal.Decimal `json:"buy_volume"`
	SellVolume       decimal.Decimal `json:"sell_volume"`
	Drift            decimal.Decimal `json:"drift"`
	Consistent       bool            `json:"consistent"`
}

// NotifierService emits outbound events for the excluded notification/UI
// layer. Delivery is at-least-once; consumers dedupe by transaction/claim id.
type NotifierService interface {
	TradeSettled(ctx context.Context, transaction *domain.Transaction) error
	DepositCredited(ctx context.Context, claim *domain.DepositClaim) error
	KYCStatusChanged(ctx context.Context, record *domain.KYCRecord) error
}

// AuditService records successful mutating operations.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
