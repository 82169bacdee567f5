package domain

// BacktestResult carries the scalar metrics of a simulator run plus the raw
// trade ledger and equity curve. The reality-check fields preserve the
// unscaled values when the post-processing clamp fires.
type BacktestResult struct {
	Strategy  string `json:"strategy"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	TotalReturn    float64 `json:"total_return"`     // percent
	TotalReturnAmt float64 `json:"total_return_amt"` // account currency

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`     // percent
	MaxDrawdown   float64 `json:"max_drawdown"` // percent
	SharpeRatio   float64 `json:"sharpe_ratio"`

	Leverage       int     `json:"leverage"`
	RiskPerTrade   float64 `json:"risk_per_trade"`  // percent
	CommissionRate float64 `json:"commission_rate"` // percent
	AutoCompound   bool    `json:"auto_compound"`

	RealityCheckApplied bool    `json:"reality_check_applied"`
	OriginalReturn      float64 `json:"original_return,omitempty"`
	OriginalBalance     float64 `json:"original_balance,omitempty"`

	Trades      []Trade       `json:"-"`
	EquityCurve []EquityPoint `json:"-"`
}
