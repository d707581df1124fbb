package integration

import (
	"context"
	"fmt"
	"sync"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by owner id
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.OwnerID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByOwnerIDForUpdate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByOwnerID(ctx, ownerID)
}

func (r *inMemoryWalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.OwnerID]; !ok {
		return fmt.Errorf("wallet not found")
	}
	cp := *w
	r.wallets[w.OwnerID] = &cp
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.OwnerID != params.OwnerID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Kind != nil && t.Kind != *params.Kind {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, *t)
	}
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, ownerID uuid.UUID) (*ports.TradeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TradeStats{
		BuyVolumeStable:  decimal.Zero,
		SellVolumeStable: decimal.Zero,
		FiatSpent:        decimal.Zero,
		FiatReceived:     decimal.Zero,
	}
	for _, t := range r.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		stats.TotalTrades++
		switch t.Status {
		case domain.TransactionStatusSettled:
			stats.Settled++
		case domain.TransactionStatusRejected:
			stats.Rejected++
		}
		if t.Status != domain.TransactionStatusSettled {
			continue
		}
		switch t.Kind {
		case domain.TradeKindBuy:
			stats.BuyVolumeStable = stats.BuyVolumeStable.Add(t.AmountStable)
			stats.FiatSpent = stats.FiatSpent.Add(t.NetAmount)
		case domain.TradeKindSell:
			stats.SellVolumeStable = stats.SellVolumeStable.Add(t.AmountStable)
			stats.FiatReceived = stats.FiatReceived.Add(t.NetAmount)
		}
	}
	return stats, nil
}

// --- In-Memory Deposit Repo ---

type inMemoryDepositRepo struct {
	mu     sync.RWMutex
	claims map[string]*domain.DepositClaim // keyed by tx hash
}

func newInMemoryDepositRepo() *inMemoryDepositRepo {
	return &inMemoryDepositRepo{claims: make(map[string]*domain.DepositClaim)}
}

func (r *inMemoryDepositRepo) Create(ctx context.Context, tx pgx.Tx, claim *domain.DepositClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claims[claim.TxHash]; ok {
		return apperror.ErrDuplicateDeposit(claim.TxHash)
	}
	cp := *claim
	r.claims[claim.TxHash] = &cp
	return nil
}

func (r *inMemoryDepositRepo) GetByTxHash(ctx context.Context, txHash string) (*domain.DepositClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.claims[txHash]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryDepositRepo) GetByTxHashForUpdate(ctx context.Context, tx pgx.Tx, txHash string) (*domain.DepositClaim, error) {
	return r.GetByTxHash(ctx, txHash)
}

func (r *inMemoryDepositRepo) Update(ctx context.Context, tx pgx.Tx, claim *domain.DepositClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claims[claim.TxHash]; !ok {
		return fmt.Errorf("deposit claim not found")
	}
	cp := *claim
	r.claims[claim.TxHash] = &cp
	return nil
}

func (r *inMemoryDepositRepo) SumCreditedByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, c := range r.claims {
		if c.OwnerID == ownerID && c.Status == domain.DepositStatusCredited {
			sum = sum.Add(c.AmountStable)
		}
	}
	return sum, nil
}

// --- In-Memory KYC Repo ---

type inMemoryKYCRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.KYCRecord
}

func newInMemoryKYCRepo() *inMemoryKYCRepo {
	return &inMemoryKYCRepo{records: make(map[uuid.UUID]*domain.KYCRecord)}
}

func (r *inMemoryKYCRepo) Upsert(ctx context.Context, record *domain.KYCRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.records[record.OwnerID] = &cp
	return nil
}

func (r *inMemoryKYCRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.KYCRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *inMemoryKYCRepo) UpdateStatus(ctx context.Context, record *domain.KYCRecord) error {
	return r.Upsert(ctx, record)
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.entries = append(r.entries, &cp)
	return nil
}

// --- Locking Transactor ---

// lockingTransactor serializes transactions with a single mutex, standing in
// for the row locks the PostgreSQL repos take with SELECT ... FOR UPDATE.
// Commit and Rollback both release the lock; double release is a no-op.
type lockingTransactor struct {
	mu sync.Mutex
}

func newLockingTransactor() *lockingTransactor {
	return &lockingTransactor{}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &lockTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// lockTx is a pgx.Tx implementation whose only job is to hold the
// transactor's lock until Commit or Rollback.
type lockTx struct {
	once    sync.Once
	release func()
}

func (t *lockTx) done() {
	t.once.Do(t.release)
}

func (t *lockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockTx) Conn() *pgx.Conn { return nil }
