package usecase

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
)

// Analyzer turns a simulator run into a BacktestResult and judges whether a
// strategy is good enough to trade live.
type Analyzer struct {
	// MaxMonthlyReturnPct caps the reported total return, scaled by the
	// backtest length. 0 disables the cap.
	MaxMonthlyReturnPct float64

	MinProfitPct float64
	MinWinRate   float64
	MinTrades    int

	Log *zap.Logger
}

const dateLayout = "2006-01-02"

// Results derives the scalar metrics from a run and applies the reality
// check. The raw ledger and equity curve are carried through untouched.
func (a Analyzer) Results(out *SimOutput, cfg SimulatorConfig, strategy string) *domain.BacktestResult {
	r := &domain.BacktestResult{
		Strategy:  strategy,
		Symbol:    cfg.Symbol,
		Timeframe: cfg.Timeframe,
		StartDate: out.Start.Format(dateLayout),
		EndDate:   out.End.Format(dateLayout),

		InitialBalance: out.InitialBalance,
		FinalBalance:   out.FinalBalance,

		TotalTrades:   out.TotalTrades,
		WinningTrades: out.WinningTrades,
		LosingTrades:  out.LosingTrades,

		Leverage:       cfg.Leverage,
		RiskPerTrade:   cfg.RiskFraction * 100,
		CommissionRate: cfg.CommissionRate * 100,
		AutoCompound:   cfg.AutoCompound,

		Trades:      out.Trades,
		EquityCurve: out.EquityCurve,
	}

	if out.InitialBalance > 0 {
		r.TotalReturn = (out.FinalBalance - out.InitialBalance) / out.InitialBalance * 100
	}
	r.TotalReturnAmt = out.FinalBalance - out.InitialBalance
	if out.TotalTrades > 0 {
		r.WinRate = float64(out.WinningTrades) / float64(out.TotalTrades) * 100
	}
	r.MaxDrawdown = maxDrawdown(out.EquityCurve)
	r.SharpeRatio = sharpeRatio(out.EquityCurve)

	a.realityCheck(r, out)
	return r
}

// realityCheck clamps implausible results so a simulator artifact never
// green-lights a strategy. The pre-clamp numbers are preserved on the result.
func (a Analyzer) realityCheck(r *domain.BacktestResult, out *SimOutput) {
	if a.MaxMonthlyReturnPct <= 0 {
		return
	}

	days := out.End.Sub(out.Start).Hours() / 24
	if days < 1 {
		days = 1
	}
	maxReturn := a.MaxMonthlyReturnPct * (days / 30)

	if r.TotalReturn > maxReturn {
		r.OriginalReturn = r.TotalReturn
		r.OriginalBalance = r.FinalBalance
		r.TotalReturn = maxReturn
		r.FinalBalance = r.InitialBalance * (1 + maxReturn/100)
		r.TotalReturnAmt = r.FinalBalance - r.InitialBalance
		r.RealityCheckApplied = true
		if a.Log != nil {
			a.Log.Warn("reality check capped backtest return",
				zap.Float64("original_return", r.OriginalReturn),
				zap.Float64("capped_return", r.TotalReturn),
				zap.Float64("days", days))
		}
	}

	// A positive return with zero winning trades cannot happen in a sound
	// run. Force it negative so validation rejects it.
	if r.WinningTrades == 0 && r.TotalReturn > 0 {
		r.OriginalReturn = r.TotalReturn
		r.OriginalBalance = r.FinalBalance
		r.TotalReturn = -10
		r.FinalBalance = r.InitialBalance * 0.9
		r.TotalReturnAmt = r.FinalBalance - r.InitialBalance
		r.RealityCheckApplied = true
		if a.Log != nil {
			a.Log.Warn("reality check rejected zero-win positive return")
		}
	}
}

// Validate is the go-live gate: enough trades, enough profit, enough wins.
// It reports every threshold the result misses, not just the first.
func (a Analyzer) Validate(r *domain.BacktestResult) error {
	var reasons []string
	if r.TotalTrades < a.MinTrades {
		reasons = append(reasons, fmt.Sprintf("%d trades, need at least %d", r.TotalTrades, a.MinTrades))
	}
	if r.TotalReturn < a.MinProfitPct {
		reasons = append(reasons, fmt.Sprintf("return %.2f%% below required %.2f%%", r.TotalReturn, a.MinProfitPct))
	}
	if r.WinRate < a.MinWinRate {
		reasons = append(reasons, fmt.Sprintf("win rate %.2f%% below required %.2f%%", r.WinRate, a.MinWinRate))
	}
	if len(reasons) > 0 {
		return fmt.Errorf("backtest: %s", strings.Join(reasons, "; "))
	}
	return nil
}

// maxDrawdown is the largest peak-to-trough equity decline, in percent.
func maxDrawdown(curve []domain.EquityPoint) float64 {
	var peak, worst float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpeRatio annualizes the mean over stddev of per-point equity returns.
func sharpeRatio(curve []domain.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}
