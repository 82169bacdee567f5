package strategy

import (
	"math"

	"github.com/vitos/futures-trader/internal/domain"
)

// EMATrend rides trends confirmed by a three-EMA alignment with RSI timing
// the entries: oversold bounces and crossovers to get in, overbought
// rollovers and bearish alignment to get out.
type EMATrend struct {
	fastEMA   int
	mediumEMA int
	slowEMA   int
	rsiPeriod int
}

func NewEMATrend() *EMATrend {
	return &EMATrend{
		fastEMA:   8,
		mediumEMA: 21,
		slowEMA:   55,
		rsiPeriod: 14,
	}
}

func (s *EMATrend) Name() string { return "ema_trend" }

func (s *EMATrend) Signal(candles []domain.Candle) domain.Signal {
	if len(candles) < s.slowEMA+2 {
		return domain.SignalNone
	}

	cl := closes(candles)
	fast := EMA(cl, s.fastEMA)
	medium := EMA(cl, s.mediumEMA)
	slow := EMA(cl, s.slowEMA)
	rsi := RSI(cl, s.rsiPeriod)

	i := len(cl) - 1
	price, prevPrice := cl[i], cl[i-1]

	bullish := fast[i] > medium[i] && medium[i] > slow[i]
	bearish := fast[i] < medium[i] && medium[i] < slow[i]

	var buy, sell bool

	switch {
	case rsi[i] > 30 && rsi[i-1] <= 30 && bullish:
		buy = true
	case fast[i] > medium[i] && fast[i-1] <= medium[i-1] && rsi[i] > rsi[i-1] && rsi[i] > 40:
		buy = true
	case bullish && math.Abs(price-fast[i])/price < 0.005 && price > prevPrice && rsi[i] > 45:
		// Pullback to the fast EMA inside an uptrend.
		buy = true
	}

	switch {
	case rsi[i] < 70 && rsi[i-1] >= 70:
		sell = true
	case fast[i] < medium[i] && fast[i-1] >= medium[i-1] && rsi[i] < rsi[i-1] && rsi[i] < 60:
		sell = true
	case bearish && rsi[i] < 40 && rsi[i] < rsi[i-1]:
		sell = true
	}

	if buy {
		return domain.SignalBuy
	}
	if sell {
		return domain.SignalSell
	}
	return domain.SignalNone
}
