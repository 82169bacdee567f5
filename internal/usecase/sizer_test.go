package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/usecase"
)

var testRules = domain.PrecisionRules{
	Symbol:      "BTCUSDT",
	PriceStep:   0.01,
	QtyStep:     0.001,
	MinQty:      0.001,
	MinNotional: 5,
}

func TestSizer_RiskBasedQuantity(t *testing.T) {
	var sizer usecase.Sizer

	// Risk 3% of 50 = 1.5 at stake, per-unit risk 2.5, 20x leverage.
	qty, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             50,
		RiskFraction:        0.03,
		Leverage:            20,
		EntryPrice:          100,
		StopPrice:           97.5,
		MaxExposureFraction: 2.0, // non-binding here
		CommissionRate:      0.0004,
		Rules:               testRules,
	})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, qty, 1e-9)
}

func TestSizer_NoStopFallsBackToNotional(t *testing.T) {
	var sizer usecase.Sizer

	qty, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             1000,
		RiskFraction:        0.01,
		Leverage:            10,
		EntryPrice:          100,
		MaxExposureFraction: 0.5,
		CommissionRate:      0.0004,
		Rules:               testRules,
	})
	require.NoError(t, err)
	// risk amount 10, leveraged notional 100, qty 1 at price 100.
	assert.InDelta(t, 1.0, qty, 1e-9)
}

func TestSizer_ExposureCapClampsQuantity(t *testing.T) {
	var sizer usecase.Sizer

	qty, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             50,
		RiskFraction:        0.03,
		Leverage:            20,
		EntryPrice:          100,
		StopPrice:           97.5,
		MaxExposureFraction: 0.5,
		CommissionRate:      0.0004,
		Rules:               testRules,
	})
	require.NoError(t, err)
	// Uncapped qty would be 12 costing 60 margin; cap is 25 margin.
	assert.InDelta(t, 5.0, qty, 1e-9)
}

func TestSizer_MinNotionalBumpsQuantityUp(t *testing.T) {
	var sizer usecase.Sizer

	qty, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             100,
		RiskFraction:        0.001,
		Leverage:            1,
		EntryPrice:          100,
		MaxExposureFraction: 0.5,
		CommissionRate:      0.0004,
		Rules:               testRules,
	})
	require.NoError(t, err)
	// Raw qty 0.001 is worth 0.10, below the 5 minimum notional.
	assert.InDelta(t, 0.05, qty, 1e-9)
}

func TestSizer_MinNotionalUnaffordable(t *testing.T) {
	var sizer usecase.Sizer

	rules := testRules
	rules.MinNotional = 100

	_, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             10,
		RiskFraction:        0.01,
		Leverage:            1,
		EntryPrice:          100,
		MaxExposureFraction: 0.5,
		CommissionRate:      0.0004,
		Rules:               rules,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientSize))
}

func TestSizer_StopAtEntryRejected(t *testing.T) {
	var sizer usecase.Sizer

	_, err := sizer.Quantity(usecase.SizeInputs{
		Balance:             1000,
		RiskFraction:        0.01,
		Leverage:            10,
		EntryPrice:          100,
		StopPrice:           100,
		MaxExposureFraction: 0.5,
		Rules:               testRules,
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientSize))
}

func TestSizer_InvalidInputsRejected(t *testing.T) {
	var sizer usecase.Sizer

	for name, in := range map[string]usecase.SizeInputs{
		"zero balance":  {Balance: 0, EntryPrice: 100, Leverage: 10},
		"zero price":    {Balance: 100, EntryPrice: 0, Leverage: 10},
		"zero leverage": {Balance: 100, EntryPrice: 100, Leverage: 0},
	} {
		if _, err := sizer.Quantity(in); !errors.Is(err, domain.ErrInsufficientSize) {
			t.Errorf("%s: expected ErrInsufficientSize, got %v", name, err)
		}
	}
}
