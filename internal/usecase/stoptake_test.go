package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/usecase"
)

func TestStopTake_InitialLevels(t *testing.T) {
	var st usecase.StopTake

	stop := st.InitialStop(domain.SideLong, 100, 0.025, testRules)
	assert.InDelta(t, 97.5, stop, 1e-9)
	target := st.InitialTarget(domain.SideLong, 100, 0.08, testRules)
	assert.InDelta(t, 108.0, target, 1e-9)

	stop = st.InitialStop(domain.SideShort, 100, 0.025, testRules)
	assert.InDelta(t, 102.5, stop, 1e-9)
	target = st.InitialTarget(domain.SideShort, 100, 0.08, testRules)
	assert.InDelta(t, 92.0, target, 1e-9)
}

func TestStopTake_TrailingStopOnlyTightens(t *testing.T) {
	var st usecase.StopTake

	// Price ran from 100 to 106; the long stop follows it up.
	got := st.TrailingStop(domain.SideLong, 106, 0.015, 97.5, testRules)
	assert.InDelta(t, 104.41, got, 1e-9)

	// Price falls back; the candidate would loosen the stop, so no update.
	got = st.TrailingStop(domain.SideLong, 100, 0.015, 104.41, testRules)
	assert.Zero(t, got)

	// Same candidate as the working stop is not an improvement either.
	got = st.TrailingStop(domain.SideLong, 106, 0.015, 104.41, testRules)
	assert.Zero(t, got)
}

func TestStopTake_TrailingStopShortMovesDown(t *testing.T) {
	var st usecase.StopTake

	got := st.TrailingStop(domain.SideShort, 94, 0.015, 102.5, testRules)
	assert.InDelta(t, 95.41, got, 1e-9)

	got = st.TrailingStop(domain.SideShort, 100, 0.015, 95.41, testRules)
	assert.Zero(t, got)
}

func TestStopTake_TrailingStopWithoutExisting(t *testing.T) {
	var st usecase.StopTake

	// No working stop yet: any candidate is an improvement.
	got := st.TrailingStop(domain.SideLong, 100, 0.015, 0, testRules)
	assert.InDelta(t, 98.5, got, 1e-9)
}

func TestStopTake_TrailingTargetRoundsConservatively(t *testing.T) {
	var st usecase.StopTake

	// Long targets floor to the price step.
	got := st.TrailingTarget(domain.SideLong, 100.555, 0.04, 100, testRules)
	assert.InDelta(t, 104.57, got, 1e-9)

	// Short targets ceil to the price step.
	got = st.TrailingTarget(domain.SideShort, 99.895, 0.04, 97, testRules)
	assert.InDelta(t, 95.9, got, 1e-9)
}

func TestStopTake_TrailingTargetStrictImprovement(t *testing.T) {
	var st usecase.StopTake

	got := st.TrailingTarget(domain.SideLong, 100, 0.04, 104, testRules)
	assert.Zero(t, got)

	got = st.TrailingTarget(domain.SideLong, 101, 0.04, 104, testRules)
	assert.InDelta(t, 105.04, got, 1e-9)

	got = st.TrailingTarget(domain.SideShort, 100, 0.04, 96, testRules)
	assert.Zero(t, got)

	got = st.TrailingTarget(domain.SideShort, 99, 0.04, 96, testRules)
	assert.InDelta(t, 95.04, got, 1e-9)
}
