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
	"github.com/shopspring/decimal"
)

// DepositHandler handles deposit claim endpoints.
type DepositHandler struct {
	depositSvc ports.DepositService
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(depositSvc ports.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

// Submit handles POST /api/v1/deposits.
func (h *DepositHandler) Submit(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.AmountStable)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	claim, err := h.depositSvc.SubmitClaim(c.Request.Context(), ports.SubmitDepositRequest{
		OwnerID:      ownerID.(uuid.UUID),
		TxHash:       req.TxHash,
		FromAddress:  req.FromAddress,
		ToAddress:    req.ToAddress,
		AmountStable: amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toDepositClaimResponse(claim))
}

// Confirm handles POST /api/v1/deposits/:txHash/confirm.
func (h *DepositHandler) Confirm(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txHash := c.Param("txHash")
	if txHash == "" {
		response.Error(c, apperror.Validation("txHash path parameter is required"))
		return
	}

	claim, err := h.depositSvc.Confirm(c.Request.Context(), ownerID.(uuid.UUID), txHash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toDepositClaimResponse(claim))
}

// toDepositClaimResponse converts domain.DepositClaim to DTO.
func toDepositClaimResponse(claim *domain.DepositClaim) dto.DepositClaimResponse {
	resp := dto.DepositClaimResponse{
		ID:            claim.ID.String(),
		TxHash:        claim.TxHash,
		FromAddress:   claim.FromAddress,
		ToAddress:     claim.ToAddress,
		AmountStable:  claim.AmountStable.StringFixed(6),
		Confirmations: claim.Confirmations,
		Status:        string(claim.Status),
		CreatedAt:     claim.CreatedAt.Format(time.RFC3339),
	}
	if claim.CreditedAt != nil {
		s := claim.CreditedAt.Format(time.RFC3339)
		resp.CreditedAt = &s
	}
	return resp
}
