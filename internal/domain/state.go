package domain

import "time"

// BotState is the process-restart recovery snapshot persisted as JSON.
type BotState struct {
	TotalTrades    int        `json:"total_trades"`
	WinningTrades  int        `json:"winning_trades"`
	LosingTrades   int        `json:"losing_trades"`
	TotalProfit    float64    `json:"total_profit"`
	StartBalance   float64    `json:"start_balance"`
	CurrentBalance float64    `json:"current_balance"`
	DailyProfit    float64    `json:"daily_profit"`
	LastTradeTime  *time.Time `json:"last_trade_time"`
	LastReportTime *time.Time `json:"last_report_time"`
}

// WinRate returns the winning-trade percentage, 0 when no trades yet.
func (s BotState) WinRate() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return float64(s.WinningTrades) / float64(s.TotalTrades) * 100
}
