package service

import (
	"stablecoin-exchange/internal/core/domain"
	"stablecoin-exchange/pkg/apperror"

	"github.com/shopspring/decimal"
)

const (
	// StablePrecision is the fractional-digit precision of stablecoin amounts.
	StablePrecision = 6
	// FiatPrecision is the fractional-digit precision of fiat amounts.
	FiatPrecision = 2
)

// FeeBreakdown itemizes the fees charged on a trade's fiat amount.
type FeeBreakdown struct {
	PlatformFee decimal.Decimal
	NetworkFee  decimal.Decimal
	TotalFee    decimal.Decimal
}

// PricingService converts between fiat and stablecoin amounts and computes
// fees. Pure computation: no state, no I/O.
//
// Rounding is half-up and applied once per direction: the side the caller
// supplies is taken verbatim and only the derived side is rounded, so
// recomputing a quote is reproducible. The two directions are not exact
// inverses; round-trip drift is bounded by one fiat cent.
type PricingService struct {
	platformFeeRate decimal.Decimal
	networkFee      decimal.Decimal
}

// NewPricingService creates a calculator with the given fee policy
// (platform fee as a rate, e.g. 0.015, and a flat network fee).
func NewPricingService(platformFeeRate, networkFee decimal.Decimal) *PricingService {
	return &PricingService{
		platformFeeRate: platformFeeRate,
		networkFee:      networkFee,
	}
}

// FiatToStable converts a fiat amount into stablecoin at the given rate,
// rounded half-up to 6 fractional digits.
func (s *PricingService) FiatToStable(amountFiat, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := validateTradeInputs(amountFiat, rate); err != nil {
		return decimal.Zero, err
	}
	return amountFiat.Div(rate).Round(StablePrecision), nil
}

// StableToFiat converts a stablecoin amount into fiat at the given rate,
// rounded half-up to 2 fractional digits.
func (s *PricingService) StableToFiat(amountStable, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := validateTradeInputs(amountStable, rate); err != nil {
		return decimal.Zero, err
	}
	return amountStable.Mul(rate).Round(FiatPrecision), nil
}

// Fees computes the fee breakdown for a fiat amount. The flat network fee
// applies only to non-zero amounts.
func (s *PricingService) Fees(amountFiat decimal.Decimal) (*FeeBreakdown, error) {
	if amountFiat.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}

	platformFee := amountFiat.Mul(s.platformFeeRate).Round(FiatPrecision)
	networkFee := decimal.Zero
	if amountFiat.IsPositive() {
		networkFee = s.networkFee
	}

	return &FeeBreakdown{
		PlatformFee: platformFee,
		NetworkFee:  networkFee,
		TotalFee:    platformFee.Add(networkFee),
	}, nil
}

// NetAmount computes the fiat amount that changes hands: the total payable
// for a buy, or the proceeds paid out to the user for a sell.
func (s *PricingService) NetAmount(kind domain.TradeKind, amountFiat, totalFee decimal.Decimal) (decimal.Decimal, error) {
	if amountFiat.IsNegative() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	if kind == domain.TradeKindBuy {
		return amountFiat.Add(totalFee).Round(FiatPrecision), nil
	}
	return amountFiat.Sub(totalFee).Round(FiatPrecision), nil
}

func validateTradeInputs(amount, rate decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.ErrInvalidAmount()
	}
	if !rate.IsPositive() {
		return apperror.ErrInvalidRate()
	}
	return nil
}
