package strategy

// Indicator helpers over plain float slices. All of them return a slice the
// same length as the input; positions before the warm-up hold zero.

// EMA is the exponential moving average with alpha = 2/(period+1), seeded
// with the simple average of the first period values.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = sum / float64(period)

	alpha := 2.0 / (float64(period) + 1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// SMA is the simple moving average over a rolling window.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSI uses Wilder smoothing (alpha = 1/period) over gains and losses.
// A flat window yields 100 when losses vanish entirely.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, its signal line and the histogram.
func MACD(values []float64, fast, slow, signalPeriod int) (macd, signal, hist []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		if i >= slow-1 {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line is an EMA of the MACD line, skipping the warm-up zeros.
	signal = make([]float64, len(values))
	if len(values) > slow-1 {
		sub := EMA(macd[slow-1:], signalPeriod)
		copy(signal[slow-1:], sub)
	}

	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// Stochastic returns smoothed %K and its %D signal line.
func Stochastic(high, low, close []float64, kPeriod, smooth, dPeriod int) (k, d []float64) {
	n := len(close)
	raw := make([]float64, n)
	for i := kPeriod - 1; i < n; i++ {
		hi, lo := high[i], low[i]
		for j := i - kPeriod + 1; j < i; j++ {
			if high[j] > hi {
				hi = high[j]
			}
			if low[j] < lo {
				lo = low[j]
			}
		}
		if hi == lo {
			raw[i] = 50
		} else {
			raw[i] = (close[i] - lo) / (hi - lo) * 100
		}
	}

	k = make([]float64, n)
	d = make([]float64, n)
	if n >= kPeriod-1+smooth {
		copy(k[kPeriod-1:], SMA(raw[kPeriod-1:], smooth))
	}
	start := kPeriod - 1 + smooth - 1
	if n > start {
		copy(d[start:], SMA(k[start:], dPeriod))
	}
	return k, d
}
