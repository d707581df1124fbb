package service

import (
	"context"
	"testing"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/internal/core/ports/mocks"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type kycTestDeps struct {
	svc      *KYCServiceImpl
	kycRepo  *mocks.MockKYCRepository
	notifier *mocks.MockNotifierService
	ctrl     *gomock.Controller
}

func setupKYCService(t *testing.T) *kycTestDeps {
	ctrl := gomock.NewController(t)
	d := &kycTestDeps{
		kycRepo:  mocks.NewMockKYCRepository(ctrl),
		notifier: mocks.NewMockNotifierService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewKYCService(d.kycRepo, d.notifier, zerolog.Nop())
	// Frozen clock so age checks are deterministic.
	d.svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return d
}

func validSubmission(ownerID uuid.UUID) ports.SubmitKYCRequest {
	return ports.SubmitKYCRequest{
		OwnerID:     ownerID,
		FullName:    "Nguyen Van A",
		DateOfBirth: "1990-03-15",
		NationalID:  "079123456789",
		TaxID:       "ABCDE1234F",
		Address:     "12 Ly Thuong Kiet, Hanoi",
	}
}

func TestKYCService_Submit_Valid(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(nil, nil)
	d.kycRepo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().KYCStatusChanged(ctx, gomock.Any()).Return(nil)

	record, err := d.svc.Submit(ctx, validSubmission(ownerID))
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusUnderReview, record.Status)
	assert.Equal(t, "ABCDE1234F", record.TaxID)
	assert.Equal(t, ownerID, record.OwnerID)
}

func TestKYCService_Submit_InvalidNationalID(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := validSubmission(uuid.New())
	req.NationalID = "12345"

	d.kycRepo.EXPECT().GetByOwnerID(ctx, req.OwnerID).Return(nil, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "KYC_010", appErr.Code)
	require.Len(t, appErr.Violations, 1)
	assert.Equal(t, "national_id", appErr.Violations[0].Field)
	assert.Equal(t, apperror.CodeInvalidNationalID, appErr.Violations[0].Code)
}

func TestKYCService_Submit_CollectsAllViolations(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.SubmitKYCRequest{
		OwnerID:     uuid.New(),
		FullName:    "Al",
		DateOfBirth: "2015-01-01",
		NationalID:  "abc",
		TaxID:       "1234567890",
		Address:     "short",
	}

	d.kycRepo.EXPECT().GetByOwnerID(ctx, req.OwnerID).Return(nil, nil)

	_, err := d.svc.Submit(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)

	codes := make(map[string]bool)
	for _, v := range appErr.Violations {
		codes[v.Code] = true
	}
	assert.Len(t, appErr.Violations, 5)
	assert.True(t, codes[apperror.CodeInvalidName])
	assert.True(t, codes[apperror.CodeUnderage])
	assert.True(t, codes[apperror.CodeInvalidNationalID])
	assert.True(t, codes[apperror.CodeInvalidTaxID])
	assert.True(t, codes[apperror.CodeInvalidAddress])
}

func TestKYCService_Submit_NotAllowedWhileUnderReview(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID: ownerID,
		Status:  domain.KYCStatusUnderReview,
	}, nil)

	_, err := d.svc.Submit(ctx, validSubmission(ownerID))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "KYC_011", appErr.Code)
}

func TestKYCService_Submit_ResubmitAfterRejection(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	reason := "blurry document"

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID:         ownerID,
		Status:          domain.KYCStatusRejected,
		RejectionReason: &reason,
	}, nil)
	d.kycRepo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().KYCStatusChanged(ctx, gomock.Any()).Return(nil)

	record, err := d.svc.Submit(ctx, validSubmission(ownerID))
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusUnderReview, record.Status)
}

func TestKYCService_Review_Approve(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID: ownerID,
		Status:  domain.KYCStatusUnderReview,
	}, nil)
	d.kycRepo.EXPECT().UpdateStatus(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().KYCStatusChanged(ctx, gomock.Any()).Return(nil)

	record, err := d.svc.Review(ctx, ports.ReviewKYCRequest{OwnerID: ownerID, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusApproved, record.Status)
	assert.NotNil(t, record.ReviewedAt)
	assert.Nil(t, record.RejectionReason)
}

func TestKYCService_Review_RejectRequiresReason(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID: ownerID,
		Status:  domain.KYCStatusUnderReview,
	}, nil)

	_, err := d.svc.Review(ctx, ports.ReviewKYCRequest{OwnerID: ownerID, Approve: false})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "REQ_001", appErr.Code)
}

func TestKYCService_Review_NotUnderReview(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID: ownerID,
		Status:  domain.KYCStatusApproved,
	}, nil)

	_, err := d.svc.Review(ctx, ports.ReviewKYCRequest{OwnerID: ownerID, Approve: true})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "KYC_011", appErr.Code)
}

func TestKYCService_IsApproved(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(nil, nil)
	ok, err := d.svc.IsApproved(ctx, ownerID)
	require.NoError(t, err)
	assert.False(t, ok)

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(&domain.KYCRecord{
		OwnerID: ownerID,
		Status:  domain.KYCStatusApproved,
	}, nil)
	ok, err = d.svc.IsApproved(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKYCService_Status_NotFound(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.kycRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(nil, nil)

	_, err := d.svc.Status(ctx, ownerID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "KYC_012", appErr.Code)
}
