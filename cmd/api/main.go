package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stablecoin-exchange/config"
	"stablecoin-exchange/internal/adapter/external"
	httpHandler "stablecoin-exchange/internal/adapter/http/handler"
	pgStorage "stablecoin-exchange/internal/adapter/storage/postgres"
	redisStorage "stablecoin-exchange/internal/adapter/storage/redis"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/internal/service"
	"stablecoin-exchange/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Stablecoin Exchange")

	platformFeeRate, err := decimal.NewFromString(cfg.Pricing.PlatformFeeRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid platform fee rate")
	}
	networkFee, err := decimal.NewFromString(cfg.Pricing.NetworkFee)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid network fee")
	}
	minDeposit, err := decimal.NewFromString(cfg.Deposit.MinAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid minimum deposit amount")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	depositRepo := pgStorage.NewDepositRepo(pool)
	kycRepo := pgStorage.NewKYCRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	depositMarker := redisStorage.NewDepositMarker(rdb)
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize external collaborators
	rateOracle := external.NewHTTPRateOracle(
		cfg.Collaborators.RateOracleURL,
		cfg.Collaborators.Timeout,
		rateCache,
		cfg.Pricing.RateCacheTTL,
		cfg.Pricing.RateMaxStaleness,
		log,
	)
	chainOracle := external.NewHTTPConfirmationOracle(cfg.Collaborators.ChainOracleURL, cfg.Collaborators.Timeout, log)
	bankGateway := external.NewHTTPBankGateway(cfg.Collaborators.BankGatewayURL, cfg.Collaborators.Timeout, log)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	notifierSvc := service.NewNotifierService(
		cfg.Events.SinkURL,
		cfg.Events.SigningKey,
		&http.Client{Timeout: 10 * time.Second},
		log,
	)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize business services
	pricingSvc := service.NewPricingService(platformFeeRate, networkFee)
	ledgerSvc := service.NewLedgerService(walletRepo, log)
	kycSvc := service.NewKYCService(kycRepo, notifierSvc, log)
	depositSvc := service.NewDepositService(
		depositRepo,
		ledgerSvc,
		kycSvc,
		chainOracle,
		depositMarker,
		notifierSvc,
		transactor,
		service.DepositPolicy{
			MinAmount:             minDeposit,
			ConfirmationThreshold: cfg.Deposit.ConfirmationThreshold,
		},
		log,
	)
	tradeSvc := service.NewTradeService(
		txRepo,
		ledgerSvc,
		kycSvc,
		pricingSvc,
		rateOracle,
		bankGateway,
		notifierSvc,
		transactor,
		log,
	)
	reportingSvc := service.NewReportingService(txRepo, walletRepo, depositRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TradeSvc:       tradeSvc,
		DepositSvc:     depositSvc,
		KYCSvc:         kycSvc,
		ReportingSvc:   reportingSvc,
		RateOracle:     rateOracle,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
