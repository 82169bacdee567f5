package strategy

import "github.com/vitos/futures-trader/internal/domain"

// Scalping trades fast EMA crossovers confirmed by a short RSI, tuned for
// liquid majors on 1m-5m timeframes. Buys additionally want a volume spike
// unless there is plenty of history to trust the crossover alone.
type Scalping struct {
	fastEMA       int
	slowEMA       int
	rsiPeriod     int
	rsiOversold   float64
	rsiOverbought float64
	volumeWindow  int
}

func NewScalping() *Scalping {
	return &Scalping{
		fastEMA:       9,
		slowEMA:       21,
		rsiPeriod:     7,
		rsiOversold:   30,
		rsiOverbought: 70,
		volumeWindow:  10,
	}
}

func (s *Scalping) Name() string { return "scalping" }

func (s *Scalping) Signal(candles []domain.Candle) domain.Signal {
	if len(candles) < s.slowEMA+2 {
		return domain.SignalNone
	}

	cl := closes(candles)
	rsi := RSI(cl, s.rsiPeriod)
	fast := EMA(cl, s.fastEMA)
	slow := EMA(cl, s.slowEMA)

	vol := volumes(candles)
	volMA := SMA(vol, s.volumeWindow)

	i := len(cl) - 1
	volumeSpike := volMA[i] > 0 && vol[i] > volMA[i]*1.2

	var buy, sell bool

	// Bullish crossover with RSI momentum, or an oversold bounce.
	if fast[i] > slow[i] && fast[i-1] <= slow[i-1] {
		buy = rsi[i] > rsi[i-1] && rsi[i] > 40
	} else if rsi[i] > rsi[i-1] && rsi[i-1] < s.rsiOversold && rsi[i] < 45 {
		buy = true
	}

	// Bearish crossover, or an overbought rollover.
	if fast[i] < slow[i] && fast[i-1] >= slow[i-1] {
		sell = true
	} else if rsi[i] < rsi[i-1] && rsi[i] > s.rsiOverbought {
		sell = true
	}

	if buy && (volumeSpike || len(candles) > 100) {
		return domain.SignalBuy
	}
	if sell {
		return domain.SignalSell
	}
	return domain.SignalNone
}
