// Package strategy holds the signal generators and the registry that maps
// strategy names and symbols to them.
package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vitos/futures-trader/internal/domain"
)

// factories keyed by strategy name.
var factories = map[string]func() domain.SignalSource{
	"scalping":   func() domain.SignalSource { return NewScalping() },
	"stoch_macd": func() domain.SignalSource { return NewStochMACD() },
	"ema_trend":  func() domain.SignalSource { return NewEMATrend() },
}

// symbolDefaults maps symbols to the strategy tuned for them.
var symbolDefaults = map[string]string{
	"BTCUSDT": "scalping",
	"ETHUSDT": "stoch_macd",
	"ADAUSDT": "ema_trend",
}

// DefaultName is used when neither the config nor the symbol map decides.
const DefaultName = "stoch_macd"

// New returns the strategy registered under name.
func New(name string) (domain.SignalSource, error) {
	f, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown strategy %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// ForSymbol picks a strategy for the symbol. An explicit name wins; otherwise
// the per-symbol default applies, falling back to DefaultName.
func ForSymbol(symbol, name string) (domain.SignalSource, error) {
	if name != "" {
		return New(name)
	}
	if def, ok := symbolDefaults[strings.ToUpper(symbol)]; ok {
		return New(def)
	}
	return New(DefaultName)
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func closes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func highs(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

func lows(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

func volumes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
