package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaim(ownerID uuid.UUID) *domain.DepositClaim {
	return &domain.DepositClaim{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		TxHash:        "0xabc",
		FromAddress:   "0xfrom",
		ToAddress:     "0xexchange",
		AmountStable:  decimal.RequireFromString("100"),
		Confirmations: 0,
		Status:        domain.DepositStatusUnconfirmed,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func depositTestColumns() []string {
	return []string{"id", "owner_id", "tx_hash", "from_address", "to_address", "amount_stable", "confirmations", "status", "created_at", "credited_at"}
}

func depositRow(c *domain.DepositClaim) *pgxmock.Rows {
	return pgxmock.NewRows(depositTestColumns()).AddRow(
		c.ID, c.OwnerID, c.TxHash, c.FromAddress, c.ToAddress,
		c.AmountStable, c.Confirmations, c.Status, c.CreatedAt, c.CreditedAt,
	)
}

func TestDepositRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	c := newTestClaim(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO deposit_claims").
		WithArgs(c.ID, c.OwnerID, c.TxHash, c.FromAddress, c.ToAddress,
			c.AmountStable, c.Confirmations, c.Status, c.CreatedAt, c.CreditedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_Create_DuplicateTxHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	c := newTestClaim(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO deposit_claims").
		WithArgs(c.ID, c.OwnerID, c.TxHash, c.FromAddress, c.ToAddress,
			c.AmountStable, c.Confirmations, c.Status, c.CreatedAt, c.CreditedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "deposit_claims_tx_hash_key"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, c)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DEP_001", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_GetByTxHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	c := newTestClaim(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM deposit_claims WHERE tx_hash").
		WithArgs(c.TxHash).
		WillReturnRows(depositRow(c))

	result, err := repo.GetByTxHash(context.Background(), c.TxHash)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.TxHash, result.TxHash)
	assert.True(t, result.AmountStable.Equal(c.AmountStable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_GetByTxHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM deposit_claims WHERE tx_hash").
		WithArgs("0xmissing").
		WillReturnRows(pgxmock.NewRows(depositTestColumns()))

	result, err := repo.GetByTxHash(context.Background(), "0xmissing")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_GetByTxHashForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	c := newTestClaim(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM deposit_claims WHERE tx_hash .+ FOR UPDATE").
		WithArgs(c.TxHash).
		WillReturnRows(depositRow(c))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByTxHashForUpdate(context.Background(), tx, c.TxHash)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	c := newTestClaim(uuid.New())
	now := time.Now().UTC()
	c.Status = domain.DepositStatusCredited
	c.Confirmations = 25
	c.CreditedAt = &now

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE deposit_claims SET confirmations").
		WithArgs(c.Confirmations, c.Status, c.CreditedAt, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_SumCreditedByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	ownerID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.RequireFromString("250.5")))

	sum, err := repo.SumCreditedByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("250.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
