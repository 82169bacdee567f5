package usecase

import (
	"math"

	"github.com/vitos/futures-trader/internal/domain"
)

// StopTake computes initial and trailing stop-loss / take-profit prices.
// Trailing candidates are returned only when strictly more favorable than the
// existing level; a zero return means "no update".
type StopTake struct{}

// InitialStop returns the protective stop for a fresh entry.
func (StopTake) InitialStop(side domain.Side, entryPrice, stopPct float64, rules domain.PrecisionRules) float64 {
	var p float64
	if side == domain.SideLong {
		p = entryPrice * (1 - stopPct)
	} else {
		p = entryPrice * (1 + stopPct)
	}
	return rules.RoundPrice(p)
}

// InitialTarget returns the take-profit for a fresh entry.
func (StopTake) InitialTarget(side domain.Side, entryPrice, targetPct float64, rules domain.PrecisionRules) float64 {
	var p float64
	if side == domain.SideLong {
		p = entryPrice * (1 + targetPct)
	} else {
		p = entryPrice * (1 - targetPct)
	}
	return rules.RoundPrice(p)
}

// TrailingStop returns a tightened stop for the current price, or 0 when the
// candidate would not improve on the existing stop. A long stop only ever
// moves up, a short stop only ever moves down.
func (StopTake) TrailingStop(side domain.Side, currentPrice, trailPct, existingStop float64, rules domain.PrecisionRules) float64 {
	var candidate float64
	if side == domain.SideLong {
		candidate = rules.RoundPrice(currentPrice * (1 - trailPct))
		if existingStop > 0 && candidate <= existingStop {
			return 0
		}
	} else {
		candidate = rules.RoundPrice(currentPrice * (1 + trailPct))
		if existingStop > 0 && candidate >= existingStop {
			return 0
		}
	}
	return candidate
}

// TrailingTarget returns an improved take-profit for the current price, or 0
// when the candidate would not beat the working order. The candidate is
// floored for longs and ceiled for shorts so rounding never overstates the
// improvement.
func (StopTake) TrailingTarget(side domain.Side, currentPrice, trailPct, existingTarget float64, rules domain.PrecisionRules) float64 {
	step := rules.PriceStep
	var candidate float64
	if side == domain.SideLong {
		candidate = currentPrice * (1 + trailPct)
		if step > 0 {
			candidate = math.Floor(candidate/step+1e-9) * step
		}
		if existingTarget > 0 && candidate <= existingTarget {
			return 0
		}
	} else {
		candidate = currentPrice * (1 - trailPct)
		if step > 0 {
			candidate = math.Ceil(candidate/step-1e-9) * step
		}
		if existingTarget > 0 && candidate >= existingTarget {
			return 0
		}
	}
	return candidate
}
