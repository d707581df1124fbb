package handler

import (
	"stablecoin-exchange/internal/adapter/http/dto"
	"stablecoin-exchange/internal/adapter/http/middleware"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"
	"stablecoin-exchange/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet balance and reconciliation endpoints.
type WalletHandler struct {
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		Balance: balance.StringFixed(6),
	})
}

// Reconcile handles GET /api/v1/wallets/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	report, err := h.reportingSvc.Reconcile(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ReconciliationResponse{
		OwnerID:          report.OwnerID.String(),
		StoredBalance:    report.StoredBalance.StringFixed(6),
		DerivedBalance:   report.DerivedBalance.StringFixed(6),
		CreditedDeposits: report.CreditedDeposits.StringFixed(6),
		BuyVolume:        report.BuyVolume.StringFixed(6),
		SellVolume:       report.SellVolume.StringFixed(6),
		Drift:            report.Drift.StringFixed(6),
		Consistent:       report.Consistent,
	})
}
