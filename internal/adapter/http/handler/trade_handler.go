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

// TradeHandler handles trade settlement endpoints.
type TradeHandler struct {
	tradeSvc ports.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc ports.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// Execute handles POST /api/v1/trades.
func (h *TradeHandler) Execute(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TradeExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amountFiat, err := decimal.NewFromString(req.AmountFiat)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	rate := decimal.Zero // zero means: let the settlement engine ask the oracle
	if req.Rate != nil {
		rate, err = decimal.NewFromString(*req.Rate)
		if err != nil {
			response.Error(c, apperror.ErrInvalidRate())
			return
		}
	}

	txn, err := h.tradeSvc.Execute(c.Request.Context(), ports.TradeRequest{
		OwnerID:             ownerID.(uuid.UUID),
		Kind:                domain.TradeKind(req.Kind),
		AmountFiat:          amountFiat,
		Rate:                rate,
		CounterpartyAccount: req.CounterpartyAccount,
		ExchangeWallet:      req.ExchangeWallet,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                  txn.ID.String(),
		Kind:                string(txn.Kind),
		Status:              string(txn.Status),
		AmountFiat:          txn.AmountFiat.StringFixed(2),
		AmountStable:        txn.AmountStable.StringFixed(6),
		Rate:                txn.Rate.String(),
		PlatformFee:         txn.PlatformFee.StringFixed(2),
		NetworkFee:          txn.NetworkFee.StringFixed(2),
		TotalFee:            txn.TotalFee.StringFixed(2),
		NetAmount:           txn.NetAmount.StringFixed(2),
		CounterpartyAccount: txn.CounterpartyAccount,
		FailureCode:         txn.FailureCode,
		CreatedAt:           txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.SettledAt != nil {
		s := txn.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
