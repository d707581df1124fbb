package handler

import (
	"math"
	"strconv"

	"stablecoin-exchange/internal/adapter/http/dto"
	"stablecoin-exchange/internal/adapter/http/middleware"
	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"
	"stablecoin-exchange/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportingHandler handles transaction history and statistics endpoints.
type ReportingHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingSvc ports.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *ReportingHandler) ListTransactions(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		OwnerID:  ownerID.(uuid.UUID),
		Page:     page,
		PageSize: pageSize,
	}

	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if k := c.Query("kind"); k != "" {
		kind := domain.TradeKind(k)
		params.Kind = &kind
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetStats handles GET /api/v1/transactions/stats.
func (h *ReportingHandler) GetStats(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TradeStatsResponse{
		TotalTrades:      stats.TotalTrades,
		Settled:          stats.Settled,
		Rejected:         stats.Rejected,
		BuyVolumeStable:  stats.BuyVolumeStable.StringFixed(6),
		SellVolumeStable: stats.SellVolumeStable.StringFixed(6),
		FiatSpent:        stats.FiatSpent.StringFixed(2),
		FiatReceived:     stats.FiatReceived.StringFixed(2),
	})
}
