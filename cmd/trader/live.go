package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/config"
	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/infrastructure/exchange"
	"github.com/vitos/futures-trader/internal/infrastructure/logger"
	"github.com/vitos/futures-trader/internal/infrastructure/notify"
	"github.com/vitos/futures-trader/internal/infrastructure/storage"
	"github.com/vitos/futures-trader/internal/strategy"
	"github.com/vitos/futures-trader/internal/usecase"
	"github.com/vitos/futures-trader/internal/web"
)

// Equity snapshot and notifier summary cadence while live.
const reportInterval = time.Hour

func newLiveCmd(configPath *string) *cobra.Command {
	var skipValidation bool

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Trade live on Binance futures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Exchange.APIKey == "" || cfg.Exchange.APISecret == "" {
				return fmt.Errorf("live trading needs BINANCE_API_KEY and BINANCE_API_SECRET")
			}
			return runLive(cmd.Context(), cfg, skipValidation)
		},
	}

	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "start without the pre-live backtest gate")
	return cmd
}

func runLive(ctx context.Context, cfg *config.Config, skipValidation bool) error {
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	// The strategy must prove itself on recent history before it may touch
	// real margin.
	if cfg.Backtest.BeforeLive && !skipValidation {
		result, err := runBacktest(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("pre-live backtest: %w", err)
		}
		if err := newAnalyzer(cfg, log).Validate(result); err != nil {
			return fmt.Errorf("strategy rejected, not going live: %w", err)
		}
		log.Info("pre-live validation passed",
			zap.Float64("return_pct", result.TotalReturn),
			zap.Float64("win_rate", result.WinRate),
			zap.Int("trades", result.TotalTrades))
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	ledger := storage.NewLedger(store, storage.NewTradeLog(cfg.Storage.TradeLogPath), log)

	states := storage.NewStateFile(cfg.Storage.StatePath)

	adapter := exchange.NewBinanceAdapter(
		cfg.Exchange.APIKey, cfg.Exchange.APISecret,
		cfg.Exchange.RESTEndpoint, cfg.Exchange.RecvWindow, log)
	if err := adapter.InitializeFutures(ctx, cfg.Trading.Symbol, cfg.Trading.Leverage, cfg.Trading.MarginType); err != nil {
		return fmt.Errorf("futures setup: %w", err)
	}

	strat, err := strategy.ForSymbol(cfg.Trading.Symbol, cfg.Trading.Strategy)
	if err != nil {
		return err
	}

	var notifier domain.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	// Live trading refreshes the last-known balance on losses too, so the
	// next sizing works from the shrunken account rather than a stale peak.
	comp := usecase.NewCompounder(cfg.Risk.AutoCompound, cfg.Risk.ReinvestPercent, true)

	coordCfg := usecase.CoordinatorConfig{
		Symbol:              cfg.Trading.Symbol,
		Timeframe:           cfg.Trading.Timeframe,
		Leverage:            cfg.Trading.Leverage,
		RiskFraction:        cfg.Risk.RiskPerTrade,
		StopLossPct:         cfg.Risk.StopLossPct,
		TakeProfitPct:       cfg.Risk.TakeProfitPct,
		MaxExposureFraction: cfg.Risk.MaxExposureFraction,
		CommissionRate:      cfg.Backtest.Commission,
		MaxOpenPositions:    cfg.Trading.MaxOpenPositions,
		RetryCount:          cfg.Trading.RetryCount,
		RetryDelay:          cfg.RetryDelay(),
	}
	if cfg.Risk.TrailingStop {
		coordCfg.TrailingStopPct = cfg.Risk.TrailingStopPct
	}
	if cfg.Risk.TrailingTakeProfit {
		coordCfg.TrailingTargetPct = cfg.Risk.TrailingTakeProfitPct
	}

	coord := usecase.NewCoordinator(coordCfg, adapter, strat, notifier, ledger, states, comp, log)
	if err := coord.Start(ctx); err != nil {
		return fmt.Errorf("start coordinator: %w", err)
	}

	stream := exchange.NewMarketStream(cfg.Exchange.WSEndpoint, cfg.Trading.Symbol, cfg.Trading.Timeframe, log)
	stream.OnKlineClosed(coord.HandleKlineClosed)
	stream.OnPriceTick(coord.HandlePriceTick)
	if err := stream.Connect(ctx); err != nil {
		coord.Stop()
		return fmt.Errorf("market stream: %w", err)
	}

	// Filled protective orders settle at their actual fill price via the
	// user-data stream; the candle-close reconciliation covers missed events,
	// so a failed connect only degrades, never blocks.
	userStream := exchange.NewUserStream(cfg.Exchange.WSEndpoint, adapter, log)
	userStream.OnOrderUpdate(coord.HandleOrderUpdate)
	userStream.OnAccountUpdate(coord.HandleAccountUpdate)
	if err := userStream.Connect(ctx); err != nil {
		log.Warn("user stream unavailable, relying on candle reconciliation", zap.Error(err))
	}

	server := web.NewServer(cfg.Server.Port, coord, store, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("web server failed", zap.Error(err))
		}
	}()

	reportTicker := time.NewTicker(reportInterval)
	defer reportTicker.Stop()
	go func() {
		for {
			select {
			case <-reportTicker.C:
				coord.ReportPerformance(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	stream.Close()
	userStream.Close()
	coord.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown failed", zap.Error(err))
	}
	return nil
}
