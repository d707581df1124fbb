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

const creditedMarkerTTL = 24 * time.Hour

// DepositPolicy holds the crediting policy knobs.
type DepositPolicy struct {
	MinAmount             decimal.Decimal
	ConfirmationThreshold int64
}

// DepositServiceImpl implements ports.DepositService.
//
// Crediting is idempotent under concurrent confirmation: a Redis marker
// short-circuits repeats cheaply, and the claim row lock plus the credited
// status check make the database transition first-writer-wins. The database
// stays authoritative; the marker is only a fast path.
type DepositServiceImpl struct {
	depositRepo ports.DepositRepository
	ledger      ports.LedgerService
	kyc         ports.KYCService
	oracle      ports.ConfirmationOracle
	marker      ports.DepositMarker
	notifier    ports.NotifierService
	transactor  ports.DBTransactor
	policy      DepositPolicy
	log         zerolog.Logger
}

// NewDepositService creates a new DepositServiceImpl.
func NewDepositService(
	depositRepo ports.DepositRepository,
	ledger ports.LedgerService,
	kyc ports.KYCService,
	oracle ports.ConfirmationOracle,
	marker ports.DepositMarker,
	notifier ports.NotifierService,
	transactor ports.DBTransactor,
	policy DepositPolicy,
	log zerolog.Logger,
) *DepositServiceImpl {
	return &DepositServiceImpl{
		depositRepo: depositRepo,
		ledger:      ledger,
		kyc:         kyc,
		oracle:      oracle,
		marker:      marker,
		notifier:    notifier,
		transactor:  transactor,
		policy:      policy,
		log:         log,
	}
}

// SubmitClaim registers a claimed on-chain deposit. Amounts below the policy
// floor are rejected before any oracle work. Resubmitting a known txHash is
// safe: the existing claim is returned as-is, credited or not.
func (s *DepositServiceImpl) SubmitClaim(ctx context.Context, req ports.SubmitDepositRequest) (*domain.DepositClaim, error) {
	if req.AmountStable.LessThan(s.policy.MinAmount) {
		return nil, apperror.ErrBelowMinimumDeposit(s.policy.MinAmount.String())
	}

	approved, err := s.kyc.IsApproved(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, apperror.ErrKYCRequired()
	}

	existing, err := s.depositRepo.GetByTxHash(ctx, req.TxHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get deposit claim: %w", err))
	}
	if existing != nil {
		s.log.Info().
			Str("tx_hash", req.TxHash).
			Str("status", string(existing.Status)).
			Msg("deposit claim resubmitted, returning existing")
		return existing, nil
	}

	now := time.Now().UTC()
	claim := &domain.DepositClaim{
		ID:            uuid.New(),
		OwnerID:       req.OwnerID,
		TxHash:        req.TxHash,
		FromAddress:   req.FromAddress,
		ToAddress:     req.ToAddress,
		AmountStable:  req.AmountStable,
		Confirmations: 0,
		Status:        domain.DepositStatusUnconfirmed,
		CreatedAt:     now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.depositRepo.Create(ctx, dbTx, claim); err != nil {
		// Lost the insert race on tx_hash; the other submitter's claim wins.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "DEP_001" {
			return s.getExistingClaim(ctx, req.TxHash)
		}
		return nil, apperror.InternalError(fmt.Errorf("create deposit claim: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_hash", claim.TxHash).
		Str("owner_id", claim.OwnerID.String()).
		Str("amount", claim.AmountStable.String()).
		Msg("deposit claim submitted")
	return claim, nil
}

// Confirm consults the confirmation oracle and, once the claim has reached
// the policy threshold, credits the ledger exactly once. Below the threshold
// it refreshes the stored confirmation count and returns the claim
// uncredited.
func (s *DepositServiceImpl) Confirm(ctx context.Context, ownerID uuid.UUID, txHash string) (*domain.DepositClaim, error) {
	// Fast path: already marked credited in Redis.
	credited, err := s.marker.IsCredited(ctx, txHash)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_hash", txHash).Msg("redis credited check failed, falling through to DB")
	}
	if credited {
		return s.getOwnedClaim(ctx, ownerID, txHash)
	}

	claim, err := s.getOwnedClaim(ctx, ownerID, txHash)
	if err != nil {
		return nil, err
	}
	if claim.IsCredited() {
		return claim, nil
	}

	confirmations, err := s.oracle.ConfirmationsFor(ctx, txHash)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	claim, err = s.depositRepo.GetByTxHashForUpdate(ctx, dbTx, txHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock deposit claim: %w", err))
	}
	if claim == nil {
		return nil, apperror.ErrDepositNotFound()
	}

	// A concurrent confirm may have credited the claim while we were
	// talking to the oracle. First writer wins; observe and stop.
	if claim.IsCredited() {
		return claim, nil
	}

	claim.Confirmations = confirmations
	if confirmations < s.policy.ConfirmationThreshold {
		if confirmations > 0 {
			claim.Status = domain.DepositStatusConfirmed
		}
		if err := s.depositRepo.Update(ctx, dbTx, claim); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update deposit claim: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		s.log.Info().
			Str("tx_hash", txHash).
			Int64("confirmations", confirmations).
			Int64("threshold", s.policy.ConfirmationThreshold).
			Msg("deposit below confirmation threshold")
		return claim, nil
	}

	if _, err := s.ledger.Credit(ctx, dbTx, claim.OwnerID, claim.AmountStable, ports.LedgerReasonDeposit); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claim.Status = domain.DepositStatusCredited
	claim.CreditedAt = &now
	if err := s.depositRepo.Update(ctx, dbTx, claim); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update deposit claim: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := s.marker.MarkCredited(ctx, txHash, creditedMarkerTTL); err != nil {
		s.log.Warn().Err(err).Str("tx_hash", txHash).Msg("failed to write credited marker")
	}

	s.log.Info().
		Str("tx_hash", txHash).
		Str("owner_id", claim.OwnerID.String()).
		Str("amount", claim.AmountStable.String()).
		Msg("deposit credited")

	if err := s.notifier.DepositCredited(ctx, claim); err != nil {
		s.log.Warn().Err(err).Str("tx_hash", txHash).Msg("deposit credited notification failed")
	}
	return claim, nil
}

func (s *DepositServiceImpl) getOwnedClaim(ctx context.Context, ownerID uuid.UUID, txHash string) (*domain.DepositClaim, error) {
	claim, err := s.depositRepo.GetByTxHash(ctx, txHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get deposit claim: %w", err))
	}
	if claim == nil || claim.OwnerID != ownerID {
		return nil, apperror.ErrDepositNotFound()
	}
	return claim, nil
}

func (s *DepositServiceImpl) getExistingClaim(ctx context.Context, txHash string) (*domain.DepositClaim, error) {
	claim, err := s.depositRepo.GetByTxHash(ctx, txHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get deposit claim: %w", err))
	}
	if claim == nil {
		return nil, apperror.ErrDepositNotFound()
	}
	return claim, nil
}
