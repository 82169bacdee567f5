package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitos/futures-trader/internal/usecase"
)

func TestCompounder_FirstObservationInitializes(t *testing.T) {
	c := usecase.NewCompounder(true, 0.75, true)

	assert.Zero(t, c.Observe(1000))
	assert.Equal(t, 1000.0, c.InitialBalance())
	assert.Equal(t, 1000.0, c.LastKnownBalance())
}

func TestCompounder_ProfitReturnsReinvestShare(t *testing.T) {
	c := usecase.NewCompounder(true, 0.75, true)
	c.Observe(1000)

	got := c.Observe(1010)
	assert.InDelta(t, 7.5, got, 1e-9)
	assert.Equal(t, 1010.0, c.LastKnownBalance())

	// Next profit is measured from the refreshed balance.
	got = c.Observe(1014)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestCompounder_DisabledStillTracksBalance(t *testing.T) {
	c := usecase.NewCompounder(false, 0.75, true)
	c.Observe(1000)

	assert.Zero(t, c.Observe(1010))
	assert.Equal(t, 1010.0, c.LastKnownBalance())
}

func TestCompounder_LossRefreshPolicy(t *testing.T) {
	// With refresh on loss, a drawdown resets the baseline and only the
	// recovery above it counts as profit.
	c := usecase.NewCompounder(true, 0.5, true)
	c.Observe(1000)
	assert.Zero(t, c.Observe(900))
	assert.Equal(t, 900.0, c.LastKnownBalance())
	assert.InDelta(t, 25.0, c.Observe(950), 1e-9)

	// Without it, the baseline holds through the drawdown and recovery
	// back to it yields nothing.
	c = usecase.NewCompounder(true, 0.5, false)
	c.Observe(1000)
	assert.Zero(t, c.Observe(900))
	assert.Equal(t, 1000.0, c.LastKnownBalance())
	assert.Zero(t, c.Observe(950))
	assert.InDelta(t, 10.0, c.Observe(1020), 1e-9)
}
