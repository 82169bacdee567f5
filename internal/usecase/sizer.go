package usecase

import (
	"math"

	"github.com/vitos/futures-trader/internal/domain"
)

// SizeInputs are the explicit inputs to a sizing decision. All fields are
// required except StopPrice (0 means size without a stop distance).
type SizeInputs struct {
	Balance      float64
	RiskFraction float64
	Leverage     int
	EntryPrice   float64
	StopPrice    float64

	// MaxExposureFraction caps the margin cost of the position as a
	// fraction of balance. Call sites use different caps (0.2 for
	// backtest entries, 0.5 as the general sanity cap); both are kept
	// configurable rather than unified.
	MaxExposureFraction float64

	CommissionRate float64
	Rules          domain.PrecisionRules
}

// Sizer computes order quantities under risk limits and exchange precision
// constraints. Pure: no state, no side effects.
type Sizer struct{}

// Quantity returns the order quantity for the given inputs, or
// domain.ErrInsufficientSize when no quantity can satisfy the exchange
// minimums within the exposure cap and available balance.
func (Sizer) Quantity(in SizeInputs) (float64, error) {
	if in.Balance <= 0 || in.EntryPrice <= 0 || in.Leverage < 1 {
		return 0, domain.ErrInsufficientSize
	}

	lev := float64(in.Leverage)
	riskAmount := in.Balance * in.RiskFraction

	var raw float64
	if in.StopPrice > 0 {
		perUnitRisk := math.Abs(in.EntryPrice - in.StopPrice)
		if perUnitRisk <= 0 {
			// Stop too close to entry; risk per unit is undefined.
			return 0, domain.ErrInsufficientSize
		}
		raw = riskAmount * lev / perUnitRisk
	} else {
		raw = riskAmount * lev / in.EntryPrice
	}

	maxExposure := in.Balance * in.MaxExposureFraction
	if raw*in.EntryPrice/lev > maxExposure {
		raw = maxExposure * lev / in.EntryPrice
	}

	qty := in.Rules.FloorQty(raw)
	if qty < in.Rules.MinQty {
		qty = 0
	}

	if in.Rules.MinNotional > 0 && qty*in.EntryPrice < in.Rules.MinNotional {
		// Round up to the smallest quantity meeting the minimum notional,
		// but only if its cost still fits the exposure cap and the balance
		// net of commission.
		bumped := in.Rules.CeilQty(in.Rules.MinNotional / in.EntryPrice)
		if bumped < in.Rules.MinQty {
			bumped = in.Rules.MinQty
		}
		cost := bumped * in.EntryPrice / lev
		commission := bumped * in.EntryPrice * in.CommissionRate
		if cost > maxExposure || cost+commission > in.Balance {
			return 0, domain.ErrInsufficientSize
		}
		qty = bumped
	}

	if qty <= 0 {
		return 0, domain.ErrInsufficientSize
	}
	return qty, nil
}
