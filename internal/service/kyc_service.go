package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	nationalIDPattern = regexp.MustCompile(`^[0-9]{12}$`)
	taxIDPattern      = regexp.MustCompile(`^[A-Za-z]{5}[0-9]{4}[A-Za-z]$`)
)

const (
	minAgeYears       = 18
	minFullNameLen    = 3
	minAddressLen     = 10
	dateOfBirthLayout = "2006-01-02"
)

// KYCServiceImpl implements ports.KYCService.
type KYCServiceImpl struct {
	kycRepo  ports.KYCRepository
	notifier ports.NotifierService
	log      zerolog.Logger
	now      func() time.Time
}

// NewKYCService creates a new KYCServiceImpl.
func NewKYCService(kycRepo ports.KYCRepository, notifier ports.NotifierService, log zerolog.Logger) *KYCServiceImpl {
	return &KYCServiceImpl{
		kycRepo:  kycRepo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Submit validates an identity submission and moves the record to
// under_review. Field violations are collected and returned together so the
// caller can render every problem at once. Resubmission is allowed only from
// pending or rejected.
func (s *KYCServiceImpl) Submit(ctx context.Context, req ports.SubmitKYCRequest) (*domain.KYCRecord, error) {
	existing, err := s.kycRepo.GetByOwnerID(ctx, req.OwnerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load kyc record: %w", err))
	}
	if existing != nil && !existing.CanSubmit() {
		return nil, apperror.ErrKYCInvalidTransition(string(existing.Status))
	}

	dob, violations := s.validateSubmission(req)
	if len(violations) > 0 {
		return nil, apperror.ErrKYCValidation(violations)
	}

	now := s.now().UTC()
	record := &domain.KYCRecord{
		OwnerID:     req.OwnerID,
		FullName:    strings.TrimSpace(req.FullName),
		DateOfBirth: dob,
		NationalID:  req.NationalID,
		TaxID:       strings.ToUpper(req.TaxID),
		Address:     strings.TrimSpace(req.Address),
		Status:      domain.KYCStatusUnderReview,
		SubmittedAt: now,
	}

	if err := s.kycRepo.Upsert(ctx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save kyc record: %w", err))
	}

	s.log.Info().
		Str("owner_id", record.OwnerID.String()).
		Str("status", string(record.Status)).
		Msg("identity submission accepted for review")

	if err := s.notifier.KYCStatusChanged(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("owner_id", record.OwnerID.String()).Msg("kyc status notification failed")
	}
	return record, nil
}

// Review applies the external reviewer's decision to a record that is
// under_review. Rejection requires a reason; a rejected owner may resubmit.
func (s *KYCServiceImpl) Review(ctx context.Context, req ports.ReviewKYCRequest) (*domain.KYCRecord, error) {
	record, err := s.kycRepo.GetByOwnerID(ctx, req.OwnerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load kyc record: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrKYCRecordNotFound()
	}
	if !record.CanReview() {
		return nil, apperror.ErrKYCInvalidTransition(string(record.Status))
	}

	now := s.now().UTC()
	record.ReviewedAt = &now
	if req.Approve {
		record.Status = domain.KYCStatusApproved
		record.RejectionReason = nil
	} else {
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			return nil, apperror.Validation("rejection_reason is required when rejecting")
		}
		record.Status = domain.KYCStatusRejected
		record.RejectionReason = &reason
	}

	if err := s.kycRepo.UpdateStatus(ctx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update kyc status: %w", err))
	}

	s.log.Info().
		Str("owner_id", record.OwnerID.String()).
		Str("status", string(record.Status)).
		Msg("identity review decision recorded")

	if err := s.notifier.KYCStatusChanged(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("owner_id", record.OwnerID.String()).Msg("kyc status notification failed")
	}
	return record, nil
}

// Status returns the owner's identity record.
func (s *KYCServiceImpl) Status(ctx context.Context, ownerID uuid.UUID) (*domain.KYCRecord, error) {
	record, err := s.kycRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load kyc record: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrKYCRecordNotFound()
	}
	return record, nil
}

// IsApproved is the gate check consulted before any balance mutation.
// Owners with no record are simply not approved.
func (s *KYCServiceImpl) IsApproved(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	record, err := s.kycRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("load kyc record: %w", err))
	}
	return record != nil && record.Status == domain.KYCStatusApproved, nil
}

func (s *KYCServiceImpl) validateSubmission(req ports.SubmitKYCRequest) (time.Time, []apperror.FieldViolation) {
	var violations []apperror.FieldViolation

	if len(strings.TrimSpace(req.FullName)) < minFullNameLen {
		violations = append(violations, apperror.FieldViolation{
			Field:   "full_name",
			Code:    apperror.CodeInvalidName,
			Message: fmt.Sprintf("must be at least %d characters", minFullNameLen),
		})
	}

	dob, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil {
		violations = append(violations, apperror.FieldViolation{
			Field:   "date_of_birth",
			Code:    apperror.CodeUnderage,
			Message: "must be a valid date in YYYY-MM-DD format",
		})
	} else if ageAt(dob, s.now().UTC()) < minAgeYears {
		violations = append(violations, apperror.FieldViolation{
			Field:   "date_of_birth",
			Code:    apperror.CodeUnderage,
			Message: fmt.Sprintf("must be at least %d years old", minAgeYears),
		})
	}

	if !nationalIDPattern.MatchString(req.NationalID) {
		violations = append(violations, apperror.FieldViolation{
			Field:   "national_id",
			Code:    apperror.CodeInvalidNationalID,
			Message: "must be exactly 12 digits",
		})
	}

	if !taxIDPattern.MatchString(req.TaxID) {
		violations = append(violations, apperror.FieldViolation{
			Field:   "tax_id",
			Code:    apperror.CodeInvalidTaxID,
			Message: "must be 5 letters, 4 digits, then 1 letter",
		})
	}

	if len(strings.TrimSpace(req.Address)) < minAddressLen {
		violations = append(violations, apperror.FieldViolation{
			Field:   "address",
			Code:    apperror.CodeInvalidAddress,
			Message: fmt.Sprintf("must be at least %d characters", minAddressLen),
		})
	}

	return dob, violations
}

// ageAt computes full years between birth and ref, accounting for whether the
// birthday has occurred yet in ref's year.
func ageAt(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}
