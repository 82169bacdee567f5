// Package report renders backtest results to disk: JSON scalars for
// machines, CSV ledgers for spreadsheets, markdown for humans.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vitos/futures-trader/internal/domain"
)

// Writer writes one results bundle per run into dir.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders the full bundle and returns the paths written.
func (w *Writer) Write(r *domain.BacktestResult) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	prefix := fmt.Sprintf("%s_%s_%s", r.Strategy, r.Symbol, stamp)

	paths := make([]string, 0, 4)

	p := filepath.Join(w.dir, prefix+"_results.json")
	if err := w.writeJSON(p, r); err != nil {
		return nil, err
	}
	paths = append(paths, p)

	p = filepath.Join(w.dir, prefix+"_trades.csv")
	if err := w.writeTradesCSV(p, r.Trades); err != nil {
		return nil, err
	}
	paths = append(paths, p)

	p = filepath.Join(w.dir, prefix+"_equity.csv")
	if err := w.writeEquityCSV(p, r.EquityCurve); err != nil {
		return nil, err
	}
	paths = append(paths, p)

	p = filepath.Join(w.dir, prefix+"_summary.md")
	if err := w.writeSummary(p, r); err != nil {
		return nil, err
	}
	paths = append(paths, p)

	return paths, nil
}

func (w *Writer) writeJSON(path string, r *domain.BacktestResult) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (w *Writer) writeTradesCSV(path string, trades []domain.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{
		"id", "timestamp", "symbol", "side", "quantity", "entry_price",
		"exit_price", "commission", "slippage_pct", "realized_profit",
		"reason", "balance",
	}); err != nil {
		return err
	}

	for _, t := range trades {
		if err := cw.Write([]string{
			t.ID,
			t.Time.UTC().Format(time.RFC3339),
			t.Symbol,
			string(t.Side),
			formatFloat(t.Size),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			formatFloat(t.Commission),
			formatFloat(t.SlippagePct),
			formatFloat(t.RealizedPnL),
			t.Reason,
			formatFloat(t.Balance),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeEquityCSV(path string, curve []domain.EquityPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"timestamp", "equity"}); err != nil {
		return err
	}
	for _, p := range curve {
		if err := cw.Write([]string{
			p.Time.UTC().Format(time.RFC3339),
			formatFloat(p.Equity),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeSummary(path string, r *domain.BacktestResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Backtest Report: %s on %s\n\n", r.Strategy, r.Symbol)
	fmt.Fprintf(f, "Period: %s to %s (%s candles)\n\n", r.StartDate, r.EndDate, r.Timeframe)

	fmt.Fprintf(f, "## Performance\n\n")
	fmt.Fprintf(f, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(f, "| Initial balance | %.2f |\n", r.InitialBalance)
	fmt.Fprintf(f, "| Final balance | %.2f |\n", r.FinalBalance)
	fmt.Fprintf(f, "| Total return | %.2f%% (%.2f) |\n", r.TotalReturn, r.TotalReturnAmt)
	fmt.Fprintf(f, "| Total trades | %d |\n", r.TotalTrades)
	fmt.Fprintf(f, "| Win rate | %.2f%% (%d/%d) |\n", r.WinRate, r.WinningTrades, r.TotalTrades)
	fmt.Fprintf(f, "| Max drawdown | %.2f%% |\n", r.MaxDrawdown)
	fmt.Fprintf(f, "| Sharpe ratio | %.2f |\n", r.SharpeRatio)

	fmt.Fprintf(f, "\n## Settings\n\n")
	fmt.Fprintf(f, "| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(f, "| Leverage | %dx |\n", r.Leverage)
	fmt.Fprintf(f, "| Risk per trade | %.2f%% |\n", r.RiskPerTrade)
	fmt.Fprintf(f, "| Commission | %.4f%% |\n", r.CommissionRate)
	fmt.Fprintf(f, "| Auto compound | %t |\n", r.AutoCompound)

	if r.RealityCheckApplied {
		fmt.Fprintf(f, "\n## Reality Check\n\n")
		fmt.Fprintf(f, "Reported figures were capped. The raw run finished at %.2f (%.2f%% return).\n",
			r.OriginalBalance, r.OriginalReturn)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
