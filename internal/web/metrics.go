package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitos/futures-trader/internal/usecase"
)

// newStatusCollectors exposes the coordinator snapshot as pull-style gauges.
// Values are read fresh on every scrape, so there is no push path to keep
// in sync with the trading loop.
func newStatusCollectors(status StatusProvider) []prometheus.Collector {
	gauge := func(name, help string, value func(s usecase.StatusSnapshot) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "trader",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return value(status.Snapshot())
		})
	}

	return []prometheus.Collector{
		gauge("trades_total", "Completed trades since start.", func(s usecase.StatusSnapshot) float64 {
			return float64(s.TotalTrades)
		}),
		gauge("trades_won_total", "Winning trades since start.", func(s usecase.StatusSnapshot) float64 {
			return float64(s.WinningTrades)
		}),
		gauge("trades_lost_total", "Losing trades since start.", func(s usecase.StatusSnapshot) float64 {
			return float64(s.LosingTrades)
		}),
		gauge("win_rate_percent", "Winning-trade percentage.", func(s usecase.StatusSnapshot) float64 {
			return s.WinRate
		}),
		gauge("profit_usdt", "Realized profit since start.", func(s usecase.StatusSnapshot) float64 {
			return s.TotalProfit
		}),
		gauge("balance_usdt", "Tracked account balance.", func(s usecase.StatusSnapshot) float64 {
			return s.CurrentBalance
		}),
		gauge("position_open", "1 while a position is held.", func(s usecase.StatusSnapshot) float64 {
			if s.InPosition {
				return 1
			}
			return 0
		}),
		gauge("position_size", "Open position quantity, 0 while flat.", func(s usecase.StatusSnapshot) float64 {
			return s.Size
		}),
	}
}
