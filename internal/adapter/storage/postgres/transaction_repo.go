package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, owner_id, kind, amount_fiat, amount_stable, rate,
		platform_fee, network_fee, total_fee, net_amount,
		counterparty_account, exchange_wallet, status, failure_code, created_at, settled_at`

// Create inserts a transaction record within a database transaction.
// Records are immutable once written; settled and rejected rows are terminal.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, owner_id, kind, amount_fiat, amount_stable, rate,
		platform_fee, network_fee, total_fee, net_amount,
		counterparty_account, exchange_wallet, status, failure_code, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.OwnerID, t.Kind, t.AmountFiat, t.AmountStable, t.Rate,
		t.PlatformFee, t.NetworkFee, t.TotalFee, t.NetAmount,
		t.CounterpartyAccount, t.ExchangeWallet, t.Status, t.FailureCode,
		t.CreatedAt, t.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argIdx))
	args = append(args, params.OwnerID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+transactionColumns+`
		FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Kind, &t.AmountFiat, &t.AmountStable, &t.Rate,
			&t.PlatformFee, &t.NetworkFee, &t.TotalFee, &t.NetAmount,
			&t.CounterpartyAccount, &t.ExchangeWallet, &t.Status, &t.FailureCode,
			&t.CreatedAt, &t.SettledAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats retrieves aggregated trade statistics for an owner.
func (r *TransactionRepo) GetStats(ctx context.Context, ownerID uuid.UUID) (*ports.TradeStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'SETTLED') AS settled,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
		COALESCE(SUM(amount_stable) FILTER (WHERE kind = 'BUY' AND status = 'SETTLED'), 0) AS buy_volume,
		COALESCE(SUM(amount_stable) FILTER (WHERE kind = 'SELL' AND status = 'SETTLED'), 0) AS sell_volume,
		COALESCE(SUM(net_amount) FILTER (WHERE kind = 'BUY' AND status = 'SETTLED'), 0) AS fiat_spent,
		COALESCE(SUM(net_amount) FILTER (WHERE kind = 'SELL' AND status = 'SETTLED'), 0) AS fiat_received
		FROM transactions WHERE owner_id = $1`

	stats := &ports.TradeStats{}
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&stats.TotalTrades, &stats.Settled, &stats.Rejected,
		&stats.BuyVolumeStable, &stats.SellVolumeStable,
		&stats.FiatSpent, &stats.FiatReceived,
	)
	if err != nil {
		return nil, fmt.Errorf("get trade stats: %w", err)
	}
	return stats, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Kind, &t.AmountFiat, &t.AmountStable, &t.Rate,
		&t.PlatformFee, &t.NetworkFee, &t.TotalFee, &t.NetAmount,
		&t.CounterpartyAccount, &t.ExchangeWallet, &t.Status, &t.FailureCode,
		&t.CreatedAt, &t.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
