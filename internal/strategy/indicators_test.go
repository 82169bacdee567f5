package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42
	}
	ema := EMA(values, 9)
	assert.Zero(t, ema[7]) // warm-up
	for i := 8; i < len(ema); i++ {
		assert.InDelta(t, 42.0, ema[i], 1e-9)
	}
}

func TestEMA_TracksDirection(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	ema := EMA(values, 9)
	// The EMA lags a rising series but keeps rising below the price.
	for i := 10; i < len(ema); i++ {
		assert.Greater(t, ema[i], ema[i-1])
		assert.Less(t, ema[i], values[i])
	}
}

func TestEMA_ShortInput(t *testing.T) {
	ema := EMA([]float64{1, 2, 3}, 9)
	for _, v := range ema {
		assert.Zero(t, v)
	}
}

func TestSMA(t *testing.T) {
	sma := SMA([]float64{1, 2, 3, 4, 5, 6}, 5)
	assert.Zero(t, sma[3])
	assert.InDelta(t, 3.0, sma[4], 1e-9)
	assert.InDelta(t, 4.0, sma[5], 1e-9)
}

func TestRSI_Extremes(t *testing.T) {
	rising := make([]float64, 40)
	falling := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 100 - float64(i)
	}

	up := RSI(rising, 14)
	assert.InDelta(t, 100.0, up[len(up)-1], 1e-9)

	down := RSI(falling, 14)
	assert.InDelta(t, 0.0, down[len(down)-1], 1e-9)
}

func TestRSI_FlatSeriesIsNeutral(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	rsi := RSI(flat, 14)
	assert.InDelta(t, 50.0, rsi[len(rsi)-1], 1e-9)
}

func TestRSI_StaysInRange(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 100 + float64((i*7)%13) - 6
	}
	for _, v := range RSI(values, 14)[15:] {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestMACD_ZeroOnConstantSeries(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		values[i] = 50
	}
	macd, signal, hist := MACD(values, 12, 26, 9)
	last := len(values) - 1
	assert.InDelta(t, 0.0, macd[last], 1e-9)
	assert.InDelta(t, 0.0, signal[last], 1e-9)
	assert.InDelta(t, 0.0, hist[last], 1e-9)
}

func TestMACD_PositiveInUptrend(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		values[i] = 100 + float64(i)*0.5
	}
	macd, _, _ := MACD(values, 12, 26, 9)
	// Fast EMA sits above slow EMA in a sustained uptrend.
	assert.Greater(t, macd[len(values)-1], 0.0)
}

func TestStochastic_RangeAndExtremes(t *testing.T) {
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	cl := make([]float64, n)
	for i := 0; i < n; i++ {
		// Closing at the top of each bar's range while trending up.
		cl[i] = 100 + float64(i)
		high[i] = cl[i]
		low[i] = cl[i] - 2
	}

	k, d := Stochastic(high, low, cl, 14, 3, 3)
	require.Greater(t, len(k), 20)
	last := n - 1
	assert.Greater(t, k[last], 80.0)
	assert.Greater(t, d[last], 80.0)
	for i := 20; i < n; i++ {
		assert.GreaterOrEqual(t, k[i], 0.0)
		assert.LessOrEqual(t, k[i], 100.0)
	}
}
