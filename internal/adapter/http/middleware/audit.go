package middleware

import (
	"encoding/json"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var ownerID *uuid.UUID
		if oid, exists := c.Get(CtxOwnerID); exists {
			if id, ok := oid.(uuid.UUID); ok {
				ownerID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			OwnerID:      ownerID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/trades" && method == "POST":
		return domain.AuditActionTrade, "transaction"
	case path == "/api/v1/deposits" && method == "POST":
		return domain.AuditActionDepositSubmit, "deposit_claim"
	case path == "/api/v1/kyc" && method == "POST":
		return domain.AuditActionKYCSubmit, "kyc_record"
	case path == "/api/v1/kyc/review" && method == "POST":
		return domain.AuditActionKYCReview, "kyc_record"
	}
	if method == "POST" && len(path) > len("/api/v1/deposits/") && path[:len("/api/v1/deposits/")] == "/api/v1/deposits/" {
		// POST /api/v1/deposits/:txHash/confirm
		return domain.AuditActionDepositConfirm, "deposit_claim"
	}
	return "", ""
}
