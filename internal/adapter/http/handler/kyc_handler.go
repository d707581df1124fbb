package handler

import (
	"time"

	"stablecoin-exchange/internal/adapter/http/dto"
	"stablecoin-exchange/internal/adapter/http/middleware"
	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"
	"stablecoin-exchange/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KYCHandler handles identity verification endpoints.
type KYCHandler struct {
	kycSvc ports.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycSvc ports.KYCService) *KYCHandler {
	return &KYCHandler{kycSvc: kycSvc}
}

// Submit handles POST /api/v1/kyc.
func (h *KYCHandler) Submit(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.KYCSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	record, err := h.kycSvc.Submit(c.Request.Context(), ports.SubmitKYCRequest{
		OwnerID:     ownerID.(uuid.UUID),
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		NationalID:  req.NationalID,
		TaxID:       req.TaxID,
		Address:     req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toKYCRecordResponse(record))
}

// Status handles GET /api/v1/kyc/status.
func (h *KYCHandler) Status(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	record, err := h.kycSvc.Status(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toKYCRecordResponse(record))
}

// Review handles POST /api/v1/kyc/review. The reviewer targets any owner, so
// the owner id comes from the body rather than the token.
func (h *KYCHandler) Review(c *gin.Context) {
	var req dto.KYCReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	targetID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.Error(c, apperror.Validation("owner_id must be a valid UUID"))
		return
	}

	reviewReq := ports.ReviewKYCRequest{
		OwnerID: targetID,
		Approve: req.Approve,
	}
	if req.RejectionReason != nil {
		reviewReq.RejectionReason = *req.RejectionReason
	}

	record, err := h.kycSvc.Review(c.Request.Context(), reviewReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toKYCRecordResponse(record))
}

// toKYCRecordResponse converts domain.KYCRecord to DTO. Identity fields stay
// out of the response on purpose; only the owner's name echoes back.
func toKYCRecordResponse(record *domain.KYCRecord) dto.KYCRecordResponse {
	resp := dto.KYCRecordResponse{
		OwnerID:         record.OwnerID.String(),
		FullName:        record.FullName,
		Status:          string(record.Status),
		RejectionReason: record.RejectionReason,
		SubmittedAt:     record.SubmittedAt.Format(time.RFC3339),
	}
	if record.ReviewedAt != nil {
		s := record.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}
