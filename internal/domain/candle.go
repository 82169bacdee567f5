package domain

import "time"

// Candle is a fixed-interval OHLCV bar.
type Candle struct {
	OpenTime  int64   `json:"open_time"` // unix ms
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"` // unix ms
}

func (c Candle) OpenedAt() time.Time {
	return time.UnixMilli(c.OpenTime)
}

// Signal is a directional call from a SignalSource.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = ""
)
