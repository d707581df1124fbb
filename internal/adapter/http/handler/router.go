package handler

import (
	"stablecoin-exchange/internal/adapter/http/middleware"
	redisStore "stablecoin-exchange/internal/adapter/storage/redis"
	"stablecoin-exchange/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TradeSvc       ports.TradeService
	DepositSvc     ports.DepositService
	KYCSvc         ports.KYCService
	ReportingSvc   ports.ReportingService
	RateOracle     ports.RateOracle
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes, all owner-authenticated
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	rateHandler := NewRateHandler(deps.RateOracle)
	rates := v1.Group("/rates")
	{
		rates.GET("/current", rl("reporting"), rateHandler.GetCurrent)
	}

	kycHandler := NewKYCHandler(deps.KYCSvc)
	kyc := v1.Group("/kyc")
	{
		kyc.POST("", rl("kyc"), kycHandler.Submit)
		kyc.GET("/status", rl("reporting"), kycHandler.Status)
		kyc.POST("/review", rl("kyc"), middleware.RequireScope(middleware.ScopeReviewer), kycHandler.Review)
	}

	tradeHandler := NewTradeHandler(deps.TradeSvc)
	trades := v1.Group("/trades")
	{
		trades.POST("", rl("trades"), tradeHandler.Execute)
	}

	depositHandler := NewDepositHandler(deps.DepositSvc)
	deposits := v1.Group("/deposits")
	{
		deposits.POST("", rl("deposits"), depositHandler.Submit)
		deposits.POST("/:txHash/confirm", rl("deposits"), depositHandler.Confirm)
	}

	reportingHandler := NewReportingHandler(deps.ReportingSvc)
	transactions := v1.Group("/transactions")
	{
		transactions.GET("", rl("reporting"), reportingHandler.ListTransactions)
		transactions.GET("/stats", rl("reporting"), reportingHandler.GetStats)
	}

	walletHandler := NewWalletHandler(deps.ReportingSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.GET("/balance", rl("reporting"), walletHandler.GetBalance)
		wallets.GET("/reconcile", rl("reporting"), walletHandler.Reconcile)
	}

	return r
}
