package domain

import "time"

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Opposite returns the side that closes this one.
func (s Side) Opposite() Side {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// OrderSide maps a position side to the exchange order side that opens it.
func (s Side) OrderSide() string {
	if s == SideLong {
		return "BUY"
	}
	return "SELL"
}

// Position is an open position on the exchange. At most one per symbol.
type Position struct {
	Symbol        string
	Side          Side
	Size          float64 // strictly positive while open
	EntryPrice    float64
	StopPrice     float64
	TargetPrice   float64
	UnrealizedPnL float64
	Leverage      int
	Isolated      bool
}

// Trade is an immutable ledger record for a completed entry/exit pair.
type Trade struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Side        Side      `json:"side"`
	Size        float64   `json:"quantity"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	Commission  float64   `json:"commission"`
	CommAsset   string    `json:"commission_asset"`
	SlippagePct float64   `json:"slippage_pct"`
	RealizedPnL float64   `json:"realized_profit"`
	Reason      string    `json:"reason"`
	Balance     float64   `json:"balance"`
	Time        time.Time `json:"timestamp"`
}

// EquityPoint is one sample of balance plus unrealized PnL.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Exit reasons recorded on the ledger.
const (
	ReasonStopLoss       = "stop_loss"
	ReasonTakeProfit     = "take_profit"
	ReasonSignalReversal = "signal_reversal"
	ReasonBacktestEnd    = "backtest_end"
	ReasonManualClose    = "manual_close"
)
