package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TradeServiceImpl implements ports.TradeService. It orchestrates the KYC
// gate, the pricing calculator, the bank gateway, and the ledger to settle a
// trade atomically. Every precondition failure is recorded as a rejected
// transaction and leaves the wallet untouched.
type TradeServiceImpl struct {
	txRepo     ports.TransactionRepository
	ledger     ports.LedgerService
	kyc        ports.KYCService
	pricing    *PricingService
	rateOracle ports.RateOracle
	bank       ports.BankGateway
	notifier   ports.NotifierService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTradeService creates a new TradeServiceImpl.
func NewTradeService(
	txRepo ports.TransactionRepository,
	ledger ports.LedgerService,
	kyc ports.KYCService,
	pricing *PricingService,
	rateOracle ports.RateOracle,
	bank ports.BankGateway,
	notifier ports.NotifierService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TradeServiceImpl {
	return &TradeServiceImpl{
		txRepo:     txRepo,
		ledger:     ledger,
		kyc:        kyc,
		pricing:    pricing,
		rateOracle: rateOracle,
		bank:       bank,
		notifier:   notifier,
		transactor: transactor,
		log:        log,
	}
}

// Execute settles a buy or sell trade.
//
// Buy: confirm the fiat charge with the bank gateway, then credit the
// stablecoin inside the ledger transaction. Sell: debit the stablecoin under
// the wallet row lock, then request the fiat payout; a failed payout rolls
// the debit back. The settled transaction record commits in the same
// database transaction as the ledger mutation.
func (s *TradeServiceImpl) Execute(ctx context.Context, req ports.TradeRequest) (*domain.Transaction, error) {
	rate := req.Rate
	if rate.IsZero() {
		quote, err := s.rateOracle.CurrentRate(ctx)
		if err != nil {
			return nil, err
		}
		rate = quote.Rate
	}

	approved, err := s.kyc.IsApproved(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return s.reject(ctx, req, rate, nil, apperror.ErrKYCRequired())
	}

	amountStable, err := s.pricing.FiatToStable(req.AmountFiat, rate)
	if err != nil {
		return nil, err
	}
	fees, err := s.pricing.Fees(req.AmountFiat)
	if err != nil {
		return nil, err
	}
	netAmount, err := s.pricing.NetAmount(req.Kind, req.AmountFiat, fees.TotalFee)
	if err != nil {
		return nil, err
	}

	quote := &tradeQuote{amountStable: amountStable, fees: fees, netAmount: netAmount}

	// Request-time affordability check for sells. Re-validated under the
	// row lock at debit time; this one only fails fast.
	if req.Kind == domain.TradeKindSell {
		balance, err := s.ledger.BalanceOf(ctx, req.OwnerID)
		if err != nil {
			return nil, err
		}
		if amountStable.GreaterThan(balance) {
			return s.reject(ctx, req, rate, quote, apperror.ErrInsufficientBalance())
		}
	}

	if req.Kind == domain.TradeKindBuy {
		if err := s.bank.ConfirmCharge(ctx, req.CounterpartyAccount, netAmount); err != nil {
			return s.rejectOnBankError(ctx, req, rate, quote, err)
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	switch req.Kind {
	case domain.TradeKindBuy:
		if _, err := s.ledger.Credit(ctx, dbTx, req.OwnerID, amountStable, ports.LedgerReasonBuyCredit); err != nil {
			return nil, err
		}
	case domain.TradeKindSell:
		if _, err := s.ledger.Debit(ctx, dbTx, req.OwnerID, amountStable, ports.LedgerReasonSellDebit); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == "LGR_001" {
				dbTx.Rollback(ctx) //nolint:errcheck
				return s.reject(ctx, req, rate, quote, appErr)
			}
			return nil, err
		}
		// Payout before commit: a declined or unreachable gateway rolls
		// the debit back with the transaction.
		if err := s.bank.Payout(ctx, req.CounterpartyAccount, netAmount); err != nil {
			dbTx.Rollback(ctx) //nolint:errcheck
			return s.rejectOnBankError(ctx, req, rate, quote, err)
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown trade kind %q", req.Kind))
	}

	now := time.Now().UTC()
	txn := s.buildTransaction(req, rate, quote)
	txn.Status = domain.TransactionStatusSettled
	txn.SettledAt = &now

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("kind", string(req.Kind)).
		Str("amount_fiat", req.AmountFiat.String()).
		Str("amount_stable", amountStable.String()).
		Str("rate", rate.String()).
		Msg("trade settled")

	if err := s.notifier.TradeSettled(ctx, txn); err != nil {
		s.log.Warn().Err(err).Str("transaction_id", txn.ID.String()).Msg("trade settled notification failed")
	}
	return txn, nil
}

type tradeQuote struct {
	amountStable decimal.Decimal
	fees         *FeeBreakdown
	netAmount    decimal.Decimal
}

// reject persists a rejected transaction recording the failure kind, then
// returns the precondition error. The wallet is never touched on this path.
func (s *TradeServiceImpl) reject(ctx context.Context, req ports.TradeRequest, rate decimal.Decimal, quote *tradeQuote, cause *apperror.AppError) (*domain.Transaction, error) {
	txn := s.buildTransaction(req, rate, quote)
	txn.Status = domain.TransactionStatusRejected
	txn.FailureCode = &cause.Code

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", req.OwnerID.String()).Msg("failed to begin tx for rejected trade")
		return nil, cause
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		s.log.Error().Err(err).Str("owner_id", req.OwnerID.String()).Msg("failed to record rejected trade")
		return nil, cause
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("owner_id", req.OwnerID.String()).Msg("failed to commit rejected trade")
		return nil, cause
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("kind", string(req.Kind)).
		Str("failure_code", cause.Code).
		Msg("trade rejected")
	return nil, cause
}

func (s *TradeServiceImpl) rejectOnBankError(ctx context.Context, req ports.TradeRequest, rate decimal.Decimal, quote *tradeQuote, err error) (*domain.Transaction, error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.ErrCollaboratorUnavailable("bank-gateway", err)
	}
	return s.reject(ctx, req, rate, quote, appErr)
}

func (s *TradeServiceImpl) buildTransaction(req ports.TradeRequest, rate decimal.Decimal, quote *tradeQuote) *domain.Transaction {
	txn := &domain.Transaction{
		ID:                  uuid.New(),
		OwnerID:             req.OwnerID,
		Kind:                req.Kind,
		AmountFiat:          req.AmountFiat,
		Rate:                rate,
		CounterpartyAccount: req.CounterpartyAccount,
		ExchangeWallet:      req.ExchangeWallet,
		CreatedAt:           time.Now().UTC(),
	}
	if quote != nil {
		txn.AmountStable = quote.amountStable
		txn.PlatformFee = quote.fees.PlatformFee
		txn.NetworkFee = quote.fees.NetworkFee
		txn.TotalFee = quote.fees.TotalFee
		txn.NetAmount = quote.netAmount
	}
	return txn
}
