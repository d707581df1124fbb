package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus is the identity-verification state of an owner.
type KYCStatus string

const (
	KYCStatusPending     KYCStatus = "PENDING"
	KYCStatusUnderReview KYCStatus = "UNDER_REVIEW"
	KYCStatusApproved    KYCStatus = "APPROVED"
	KYCStatusRejected    KYCStatus = "REJECTED"
)

// KYCRecord is the single identity record per owner. Resubmission after a
// rejection overwrites the fields and moves the record back to UNDER_REVIEW.
type KYCRecord struct {
	OwnerID         uuid.UUID  `json:"owner_id"`
	FullName        string     `json:"full_name"`
	DateOfBirth     time.Time  `json:"date_of_birth"`
	NationalID      string     `json:"national_id"`
	TaxID           string     `json:"tax_id"`
	Address         string     `json:"address"`
	Status          KYCStatus  `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// CanSubmit reports whether a (re)submission is allowed from the current
// status. Approved records never go back through review; records already
// under review must wait for a decision.
func (r *KYCRecord) CanSubmit() bool {
	return r.Status == KYCStatusPending || r.Status == KYCStatusRejected
}

// CanReview reports whether an external reviewer decision applies.
func (r *KYCRecord) CanReview() bool {
	return r.Status == KYCStatusUnderReview
}
