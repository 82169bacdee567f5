package domain

import (
	"math"
	"strconv"
)

// PrecisionRules are the exchange constraints for a symbol. Immutable once
// fetched; refreshed only by asking the Gateway again.
type PrecisionRules struct {
	Symbol      string
	PriceStep   float64
	QtyStep     float64
	MinQty      float64
	MinNotional float64
}

// RoundPrice rounds a price to the nearest price step.
func (r PrecisionRules) RoundPrice(p float64) float64 {
	if r.PriceStep <= 0 {
		return p
	}
	return math.Round(p/r.PriceStep) * r.PriceStep
}

// stepEpsilon absorbs binary-representation noise in step divisions so an
// exact multiple of the step never truncates to the neighboring step.
const stepEpsilon = 1e-9

// FloorQty rounds a quantity down to the quantity step.
func (r PrecisionRules) FloorQty(q float64) float64 {
	if r.QtyStep <= 0 {
		return q
	}
	return math.Floor(q/r.QtyStep+stepEpsilon) * r.QtyStep
}

// CeilQty rounds a quantity up to the quantity step.
func (r PrecisionRules) CeilQty(q float64) float64 {
	if r.QtyStep <= 0 {
		return q
	}
	return math.Ceil(q/r.QtyStep-stepEpsilon) * r.QtyStep
}

// FormatPrice renders a price with exactly the decimals the price step allows.
func (r PrecisionRules) FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', stepDecimals(r.PriceStep), 64)
}

// FormatQty renders a quantity with exactly the decimals the quantity step
// allows. Exchanges reject values with excess precision.
func (r PrecisionRules) FormatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', stepDecimals(r.QtyStep), 64)
}

func stepDecimals(step float64) int {
	if step <= 0 {
		return 8
	}
	d := 0
	for step < 1 && d < 8 {
		step *= 10
		d++
	}
	return d
}
