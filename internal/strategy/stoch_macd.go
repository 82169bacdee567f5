package strategy

import "github.com/vitos/futures-trader/internal/domain"

// StochMACD trades MACD crossovers confirmed by the stochastic oscillator,
// plus stochastic reversals out of the extreme zones when the MACD histogram
// agrees. Reversal-oriented, works best on choppy pairs.
type StochMACD struct {
	macdFast   int
	macdSlow   int
	macdSignal int

	stochK      int
	stochD      int
	stochSmooth int

	overbought float64
	oversold   float64
}

func NewStochMACD() *StochMACD {
	return &StochMACD{
		macdFast:    12,
		macdSlow:    26,
		macdSignal:  9,
		stochK:      14,
		stochD:      3,
		stochSmooth: 3,
		overbought:  80,
		oversold:    20,
	}
}

func (s *StochMACD) Name() string { return "stoch_macd" }

func (s *StochMACD) Signal(candles []domain.Candle) domain.Signal {
	if len(candles) < s.macdSlow+s.macdSignal+2 {
		return domain.SignalNone
	}

	cl := closes(candles)
	macd, signal, hist := MACD(cl, s.macdFast, s.macdSlow, s.macdSignal)
	k, d := Stochastic(highs(candles), lows(candles), cl, s.stochK, s.stochSmooth, s.stochD)

	i := len(cl) - 1

	var buy, sell bool

	if macd[i] > signal[i] && macd[i-1] <= signal[i-1] {
		buy = k[i] < s.oversold && k[i] > d[i]
	} else if k[i-1] < s.oversold && k[i] > d[i] && k[i] > k[i-1] && hist[i] > 0 {
		buy = true
	}

	if macd[i] < signal[i] && macd[i-1] >= signal[i-1] {
		sell = k[i] > s.overbought && k[i] < d[i]
	} else if k[i-1] > s.overbought && k[i] < d[i] && k[i] < k[i-1] && hist[i] < 0 {
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
