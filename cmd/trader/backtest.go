package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/config"
	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/infrastructure/exchange"
	"github.com/vitos/futures-trader/internal/infrastructure/logger"
	"github.com/vitos/futures-trader/internal/infrastructure/report"
	"github.com/vitos/futures-trader/internal/strategy"
	"github.com/vitos/futures-trader/internal/usecase"
)

const dateLayout = "2006-01-02"

func newBacktestCmd(configPath *string) *cobra.Command {
	var (
		symbol    string
		timeframe string
		strat     string
		start     string
		end       string
		writeOut  bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay historical candles through the strategy and report metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			applyOverrides(cfg, symbol, timeframe, strat)
			if start != "" {
				cfg.Backtest.StartDate = start
			}
			if end != "" {
				cfg.Backtest.EndDate = end
			}

			log, err := logger.NewLogger(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer log.Sync()

			result, err := runBacktest(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			printResult(result)

			if writeOut {
				paths, err := report.NewWriter(cfg.Storage.ReportsDir).Write(result)
				if err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				for _, p := range paths {
					fmt.Println("wrote", p)
				}
			}

			analyzer := newAnalyzer(cfg, log)
			if err := analyzer.Validate(result); err != nil {
				return fmt.Errorf("validation: %w", err)
			}
			fmt.Println("validation: PASSED")
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "override trading symbol")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "override candle interval")
	cmd.Flags().StringVar(&strat, "strategy", "", "override strategy name")
	cmd.Flags().StringVar(&start, "start", "", "backtest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "backtest end date (YYYY-MM-DD), empty means now")
	cmd.Flags().BoolVar(&writeOut, "report", false, "write JSON/CSV/markdown report files")
	return cmd
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available strategies",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range strategy.Names() {
				fmt.Println(name)
			}
		},
	}
}

func applyOverrides(cfg *config.Config, symbol, timeframe, strat string) {
	if symbol != "" {
		cfg.Trading.Symbol = symbol
	}
	if timeframe != "" {
		cfg.Trading.Timeframe = timeframe
	}
	if strat != "" {
		cfg.Trading.Strategy = strat
	}
}

func newAnalyzer(cfg *config.Config, log *zap.Logger) usecase.Analyzer {
	return usecase.Analyzer{
		MaxMonthlyReturnPct: cfg.Backtest.MaxMonthlyReturnPct,
		MinProfitPct:        cfg.Backtest.MinProfitPct,
		MinWinRate:          cfg.Backtest.MinWinRate,
		MinTrades:           cfg.Backtest.MinTrades,
		Log:                 log,
	}
}

// runBacktest fetches the candle range, replays it through the simulator and
// returns the analyzed result.
func runBacktest(ctx context.Context, cfg *config.Config, log *zap.Logger) (*domain.BacktestResult, error) {
	strat, err := strategy.ForSymbol(cfg.Trading.Symbol, cfg.Trading.Strategy)
	if err != nil {
		return nil, err
	}

	adapter := exchange.NewBinanceAdapter(
		cfg.Exchange.APIKey, cfg.Exchange.APISecret,
		cfg.Exchange.RESTEndpoint, cfg.Exchange.RecvWindow, log)

	rules, err := adapter.GetSymbolInfo(ctx, cfg.Trading.Symbol)
	if err != nil {
		return nil, fmt.Errorf("symbol info: %w", err)
	}

	startAt, endAt, err := backtestRange(cfg)
	if err != nil {
		return nil, err
	}

	candles, err := adapter.GetKlinesRange(ctx, cfg.Trading.Symbol, cfg.Trading.Timeframe,
		startAt.UnixMilli(), endAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("klines: %w", err)
	}
	log.Info("loaded candles",
		zap.Int("count", len(candles)),
		zap.String("symbol", cfg.Trading.Symbol),
		zap.String("timeframe", cfg.Trading.Timeframe))

	simCfg := usecase.SimulatorConfig{
		Symbol:                cfg.Trading.Symbol,
		Timeframe:             cfg.Trading.Timeframe,
		InitialBalance:        cfg.Backtest.InitialBalance,
		CommissionRate:        cfg.Backtest.Commission,
		Leverage:              cfg.Trading.Leverage,
		RiskFraction:          cfg.Risk.RiskPerTrade,
		StopLossPct:           cfg.Risk.StopLossPct,
		TakeProfitPct:         cfg.Risk.TakeProfitPct,
		EntryExposureFraction: cfg.Risk.EntryExposureFraction,
		MaxExposureFraction:   cfg.Risk.MaxExposureFraction,
		ExecutionProbability:  cfg.Backtest.ExecutionProbability,
		AutoCompound:          cfg.Risk.AutoCompound,
		ReinvestPercent:       cfg.Risk.ReinvestPercent,
		WarmupBars:            cfg.Backtest.WarmupBars,
		Rules:                 *rules,
	}

	var sampler usecase.Sampler
	if cfg.Backtest.Seed != 0 {
		sampler = usecase.NewRandomSampler(cfg.Backtest.Seed)
	}

	sim := usecase.NewSimulator(simCfg, strat, sampler, log)
	out, err := sim.Run(candles)
	if err != nil {
		return nil, err
	}

	return newAnalyzer(cfg, log).Results(out, simCfg, strat.Name()), nil
}

func backtestRange(cfg *config.Config) (time.Time, time.Time, error) {
	endAt := time.Now()
	if cfg.Backtest.EndDate != "" {
		t, err := time.Parse(dateLayout, cfg.Backtest.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
		}
		endAt = t
	}

	startAt := endAt.AddDate(0, 0, -30)
	if cfg.Backtest.StartDate != "" {
		t, err := time.Parse(dateLayout, cfg.Backtest.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
		}
		startAt = t
	}

	if !startAt.Before(endAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is not before end date %s",
			startAt.Format(dateLayout), endAt.Format(dateLayout))
	}
	return startAt, endAt, nil
}

func printResult(r *domain.BacktestResult) {
	fmt.Printf("strategy:        %s\n", r.Strategy)
	fmt.Printf("symbol:          %s %s\n", r.Symbol, r.Timeframe)
	fmt.Printf("period:          %s .. %s\n", r.StartDate, r.EndDate)
	fmt.Printf("balance:         %.2f -> %.2f\n", r.InitialBalance, r.FinalBalance)
	fmt.Printf("return:          %.2f%% (%.2f)\n", r.TotalReturn, r.TotalReturnAmt)
	fmt.Printf("trades:          %d (%d won / %d lost, %.1f%% win rate)\n",
		r.TotalTrades, r.WinningTrades, r.LosingTrades, r.WinRate)
	fmt.Printf("max drawdown:    %.2f%%\n", r.MaxDrawdown)
	fmt.Printf("sharpe ratio:    %.2f\n", r.SharpeRatio)
	if r.RealityCheckApplied {
		fmt.Printf("reality check:   applied (raw return %.2f%%)\n", r.OriginalReturn)
	}
}
