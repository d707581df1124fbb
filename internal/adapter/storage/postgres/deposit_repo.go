package postgres

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// DepositRepo implements ports.DepositRepository. The tx_hash uniqueness
// constraint lives here: a losing concurrent insert surfaces as
// DuplicateDeposit so the service can fall back to the winner's claim.
type DepositRepo struct {
	pool Pool
}

// NewDepositRepo creates a new DepositRepo.
func NewDepositRepo(pool Pool) *DepositRepo {
	return &DepositRepo{pool: pool}
}

const depositColumns = `id, owner_id, tx_hash, from_address, to_address, amount_stable, confirmations, status, created_at, credited_at`

// Create inserts a deposit claim within a database transaction.
func (r *DepositRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.DepositClaim) error {
	query := `INSERT INTO deposit_claims (id, owner_id, tx_hash, from_address, to_address, amount_stable, confirmations, status, created_at, credited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.OwnerID, c.TxHash, c.FromAddress, c.ToAddress,
		c.AmountStable, c.Confirmations, c.Status, c.CreatedAt, c.CreditedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrDuplicateDeposit(c.TxHash)
		}
		return fmt.Errorf("insert deposit claim: %w", err)
	}
	return nil
}

// GetByTxHash fetches a claim by its transaction hash (non-locking read).
func (r *DepositRepo) GetByTxHash(ctx context.Context, txHash string) (*domain.DepositClaim, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_claims WHERE tx_hash = $1`
	return scanDepositClaim(r.pool.QueryRow(ctx, query, txHash))
}

// GetByTxHashForUpdate fetches a claim with pessimistic locking.
// This MUST be called within a transaction.
func (r *DepositRepo) GetByTxHashForUpdate(ctx context.Context, tx pgx.Tx, txHash string) (*domain.DepositClaim, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_claims WHERE tx_hash = $1 FOR UPDATE`
	return scanDepositClaim(tx.QueryRow(ctx, query, txHash))
}

// Update writes the claim's confirmation count and status within a
// transaction.
func (r *DepositRepo) Update(ctx context.Context, tx pgx.Tx, c *domain.DepositClaim) error {
	query := `UPDATE deposit_claims SET confirmations = $1, status = $2, credited_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, c.Confirmations, c.Status, c.CreditedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update deposit claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deposit claim not found: %s", c.ID)
	}
	return nil
}

// SumCreditedByOwner totals the stablecoin amount of all credited claims for
// an owner. Used by reconciliation only.
func (r *DepositRepo) SumCreditedByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount_stable), 0) FROM deposit_claims WHERE owner_id = $1 AND status = 'CREDITED'`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum credited deposits: %w", err)
	}
	return sum, nil
}

func scanDepositClaim(row pgx.Row) (*domain.DepositClaim, error) {
	c := &domain.DepositClaim{}
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.TxHash, &c.FromAddress, &c.ToAddress,
		&c.AmountStable, &c.Confirmations, &c.Status, &c.CreatedAt, &c.CreditedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan deposit claim: %w", err)
	}
	return c, nil
}
