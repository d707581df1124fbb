package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the kind of operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionTrade          AuditAction = "TRADE_EXECUTE"
	AuditActionDepositSubmit  AuditAction = "DEPOSIT_SUBMIT"
	AuditActionDepositConfirm AuditAction = "DEPOSIT_CONFIRM"
	AuditActionKYCSubmit      AuditAction = "KYC_SUBMIT"
	AuditActionKYCReview      AuditAction = "KYC_REVIEW"
)

// AuditLog records a successful mutating request for compliance review.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      *uuid.UUID  `json:"owner_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   *string     `json:"resource_id,omitempty"`
	Details      string      `json:"details"`
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
