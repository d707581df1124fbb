package postgres

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// KYCRepo implements ports.KYCRepository. One row per owner; resubmission
// overwrites the identity fields in place.
type KYCRepo struct {
	pool Pool
}

// NewKYCRepo creates a new KYCRepo.
func NewKYCRepo(pool Pool) *KYCRepo {
	return &KYCRepo{pool: pool}
}

const kycColumns = `owner_id, full_name, date_of_birth, national_id, tax_id, address, status, rejection_reason, submitted_at, reviewed_at`

// Upsert inserts or replaces the owner's identity record.
func (r *KYCRepo) Upsert(ctx context.Context, rec *domain.KYCRecord) error {
	query := `INSERT INTO kyc_records (owner_id, full_name, date_of_birth, national_id, tax_id, address, status, rejection_reason, submitted_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			national_id = EXCLUDED.national_id,
			tax_id = EXCLUDED.tax_id,
			address = EXCLUDED.address,
			status = EXCLUDED.status,
			rejection_reason = EXCLUDED.rejection_reason,
			submitted_at = EXCLUDED.submitted_at,
			reviewed_at = EXCLUDED.reviewed_at`

	_, err := r.pool.Exec(ctx, query,
		rec.OwnerID, rec.FullName, rec.DateOfBirth, rec.NationalID, rec.TaxID,
		rec.Address, rec.Status, rec.RejectionReason, rec.SubmittedAt, rec.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert kyc record: %w", err)
	}
	return nil
}

// GetByOwnerID fetches the owner's identity record.
func (r *KYCRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.KYCRecord, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_records WHERE owner_id = $1`

	rec := &domain.KYCRecord{}
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&rec.OwnerID, &rec.FullName, &rec.DateOfBirth, &rec.NationalID, &rec.TaxID,
		&rec.Address, &rec.Status, &rec.RejectionReason, &rec.SubmittedAt, &rec.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kyc record: %w", err)
	}
	return rec, nil
}

// UpdateStatus writes the review decision onto the record.
func (r *KYCRepo) UpdateStatus(ctx context.Context, rec *domain.KYCRecord) error {
	query := `UPDATE kyc_records SET status = $1, rejection_reason = $2, reviewed_at = $3 WHERE owner_id = $4`

	tag, err := r.pool.Exec(ctx, query, rec.Status, rec.RejectionReason, rec.ReviewedAt, rec.OwnerID)
	if err != nil {
		return fmt.Errorf("update kyc status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kyc record not found: %s", rec.OwnerID)
	}
	return nil
}
