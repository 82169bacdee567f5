package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
)

// StateStore persists the bot state between restarts.
type StateStore interface {
	Load() (*domain.BotState, error)
	Save(*domain.BotState) error
}

// CoordinatorConfig is the live-trading configuration for one symbol.
type CoordinatorConfig struct {
	Symbol    string
	Timeframe string

	Leverage     int
	RiskFraction float64

	StopLossPct       float64
	TakeProfitPct     float64
	TrailingStopPct   float64
	TrailingTargetPct float64

	MaxExposureFraction float64
	CommissionRate      float64
	MaxOpenPositions    int

	KlineLimit int

	RetryCount    int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
}

// Coordinator drives live trading for a single symbol. Market events arrive
// from the stream via the Handle methods, get funneled through a single
// worker goroutine, and every decision re-reads the exchange first. The
// exchange, not local state, is the source of truth for the open position.
type Coordinator struct {
	cfg      CoordinatorConfig
	gw       domain.Gateway
	strategy domain.SignalSource
	notifier domain.Notifier
	repo     domain.TradeRepository
	states   StateStore
	comp     *Compounder
	log      *zap.Logger

	sizer    Sizer
	stopTake StopTake
	rules    domain.PrecisionRules

	mu    sync.Mutex
	book  *PositionBook
	state *domain.BotState

	// qmu serializes enqueue against Stop so no send can race the close
	// of the work channel.
	qmu       sync.Mutex
	work      chan func(context.Context)
	newCandle atomic.Bool
	started   atomic.Bool
	done      chan struct{}
}

func NewCoordinator(
	cfg CoordinatorConfig,
	gw domain.Gateway,
	strategy domain.SignalSource,
	notifier domain.Notifier,
	repo domain.TradeRepository,
	states StateStore,
	comp *Compounder,
	log *zap.Logger,
) *Coordinator {
	if cfg.KlineLimit <= 0 {
		cfg.KlineLimit = 100
	}
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 60 * time.Second
	}
	return &Coordinator{
		cfg:      cfg,
		gw:       gw,
		strategy: strategy,
		notifier: notifier,
		repo:     repo,
		states:   states,
		comp:     comp,
		log:      log,
		book:     NewPositionBook(cfg.Symbol),
		work:     make(chan func(context.Context), 16),
		done:     make(chan struct{}),
	}
}

// Start loads persisted state, fetches the symbol precision rules and spawns
// the decision worker. It returns once the coordinator is ready for events.
func (c *Coordinator) Start(ctx context.Context) error {
	state, err := c.states.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	c.state = state

	rules, err := Retry(ctx, c.cfg.RetryCount, c.cfg.RetryDelay, c.cfg.RetryMaxDelay,
		func(ctx context.Context) (*domain.PrecisionRules, error) {
			return c.gw.GetSymbolInfo(ctx, c.cfg.Symbol)
		})
	if err != nil {
		return fmt.Errorf("symbol info: %w", err)
	}
	c.rules = *rules

	if c.state.StartBalance == 0 {
		balance, err := c.accountBalance(ctx)
		if err != nil {
			return fmt.Errorf("initial balance: %w", err)
		}
		c.state.StartBalance = balance
		c.state.CurrentBalance = balance
		if err := c.states.Save(c.state); err != nil {
			c.log.Warn("state save failed", zap.Error(err))
		}
	}

	if err := c.adoptOpenPosition(ctx); err != nil {
		c.log.Warn("position adoption failed", zap.Error(err))
	}

	c.started.Store(true)
	go c.loop(ctx)
	c.log.Info("coordinator started",
		zap.String("symbol", c.cfg.Symbol),
		zap.String("timeframe", c.cfg.Timeframe),
		zap.String("strategy", c.strategy.Name()))
	return nil
}

// Stop drains the worker. Safe to call once.
func (c *Coordinator) Stop() {
	c.qmu.Lock()
	stopped := c.started.CompareAndSwap(true, false)
	c.qmu.Unlock()
	if stopped {
		close(c.work)
		<-c.done
	}
}

func (c *Coordinator) loop(ctx context.Context) {
	defer close(c.done)
	for task := range c.work {
		if ctx.Err() != nil {
			continue
		}
		task(ctx)
	}
}

// enqueue reports whether the task made it onto the queue. Stream callbacks
// can still be in flight when Stop runs, so the started check and the send
// happen under the same lock the CAS in Stop takes.
func (c *Coordinator) enqueue(task func(context.Context)) bool {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if !c.started.Load() {
		return false
	}
	select {
	case c.work <- task:
		return true
	default:
		c.log.Warn("decision queue full, dropping event")
		return false
	}
}

// HandleKlineClosed is called by the stream on every closed candle. Multiple
// closes before the worker gets to it collapse into one evaluation. A drop
// releases the debounce flag so the next close gets another chance.
func (c *Coordinator) HandleKlineClosed() {
	if !c.newCandle.CompareAndSwap(false, true) {
		return
	}
	ok := c.enqueue(func(ctx context.Context) {
		c.newCandle.Store(false)
		c.evaluate(ctx)
	})
	if !ok {
		c.newCandle.Store(false)
	}
}

// HandlePriceTick is called on book-ticker updates and only matters while a
// position is open.
func (c *Coordinator) HandlePriceTick(price float64) {
	c.mu.Lock()
	open := c.book.Open()
	c.mu.Unlock()
	if !open {
		return
	}
	c.enqueue(func(ctx context.Context) {
		c.trail(ctx, price)
	})
}

// HandleOrderUpdate is called by the user-data stream on order state changes.
// A filled protective order settles the trade at its actual fill price right
// away; the candle-close reconciliation stays as the fallback for missed
// events.
func (c *Coordinator) HandleOrderUpdate(u domain.OrderUpdate) {
	if u.Symbol != c.cfg.Symbol || u.Status != "FILLED" {
		return
	}

	var reason string
	switch u.Type {
	case "STOP_MARKET":
		reason = domain.ReasonStopLoss
	case "TAKE_PROFIT_MARKET":
		reason = domain.ReasonTakeProfit
	default:
		return
	}

	c.enqueue(func(ctx context.Context) {
		c.settleOrderFill(ctx, u, reason)
	})
}

func (c *Coordinator) settleOrderFill(ctx context.Context, u domain.OrderUpdate, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.book.Open() {
		return
	}

	price := u.AvgPrice
	if price <= 0 {
		if reason == domain.ReasonStopLoss {
			price = c.book.StopPrice()
		} else {
			price = c.book.TargetPrice()
		}
	}

	// The sibling protective order is still resting.
	if err := c.gw.CancelAllOpenOrders(ctx, c.cfg.Symbol); err != nil {
		c.log.Warn("cancel open orders failed", zap.Error(err))
	}
	c.settle(ctx, price, reason)
}

// HandleAccountUpdate refreshes the tracked balance from a user-data account
// event.
func (c *Coordinator) HandleAccountUpdate(balance float64) {
	if balance <= 0 {
		return
	}
	c.enqueue(func(ctx context.Context) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.CurrentBalance = balance
		if err := c.states.Save(c.state); err != nil {
			c.log.Warn("state save failed", zap.Error(err))
		}
	})
}

// StatusSnapshot is a point-in-time view of the coordinator for reporting.
type StatusSnapshot struct {
	Symbol         string      `json:"symbol"`
	Timeframe      string      `json:"timeframe"`
	Strategy       string      `json:"strategy"`
	Running        bool        `json:"running"`
	InPosition     bool        `json:"in_position"`
	Side           domain.Side `json:"side,omitempty"`
	Size           float64     `json:"size,omitempty"`
	EntryPrice     float64     `json:"entry_price,omitempty"`
	StopPrice      float64     `json:"stop_price,omitempty"`
	TargetPrice    float64     `json:"target_price,omitempty"`
	TotalTrades    int         `json:"total_trades"`
	WinningTrades  int         `json:"winning_trades"`
	LosingTrades   int         `json:"losing_trades"`
	WinRate        float64     `json:"win_rate"`
	TotalProfit    float64     `json:"total_profit"`
	StartBalance   float64     `json:"start_balance"`
	CurrentBalance float64     `json:"current_balance"`
}

// Snapshot returns the current status for the web surface.
func (c *Coordinator) Snapshot() StatusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := StatusSnapshot{
		Symbol:    c.cfg.Symbol,
		Timeframe: c.cfg.Timeframe,
		Strategy:  c.strategy.Name(),
		Running:   c.started.Load(),
	}
	if c.state != nil {
		snap.TotalTrades = c.state.TotalTrades
		snap.WinningTrades = c.state.WinningTrades
		snap.LosingTrades = c.state.LosingTrades
		snap.WinRate = c.state.WinRate()
		snap.TotalProfit = c.state.TotalProfit
		snap.StartBalance = c.state.StartBalance
		snap.CurrentBalance = c.state.CurrentBalance
	}
	if c.book.Open() {
		snap.InPosition = true
		snap.Side = c.book.Side()
		snap.Size = c.book.Size()
		snap.EntryPrice = c.book.EntryPrice()
		snap.StopPrice = c.book.StopPrice()
		snap.TargetPrice = c.book.TargetPrice()
	}
	return snap
}

// evaluate runs the full decision cycle: reconcile with the exchange, read
// the signal, then exit and/or enter as needed.
func (c *Coordinator) evaluate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, err := c.positionInfo(ctx)
	if err != nil {
		c.log.Error("position lookup failed", zap.Error(err))
		return
	}

	// A stop or target filled on the exchange shows up here as an open
	// local book with a flat exchange. Settle the trade before deciding.
	if c.book.Open() && pos == nil {
		c.settleExternalClose(ctx)
	}

	candles, err := Retry(ctx, c.cfg.RetryCount, c.cfg.RetryDelay, c.cfg.RetryMaxDelay,
		func(ctx context.Context) ([]domain.Candle, error) {
			return c.gw.GetKlines(ctx, c.cfg.Symbol, c.cfg.Timeframe, c.cfg.KlineLimit)
		})
	if err != nil {
		c.log.Error("kline fetch failed", zap.Error(err))
		return
	}

	signal := c.strategy.Signal(candles)
	if signal == domain.SignalNone {
		return
	}

	side := domain.SideLong
	if signal == domain.SignalSell {
		side = domain.SideShort
	}

	if pos != nil {
		if pos.Side == side {
			return
		}
		// Reversal: close first, then enter. Never an atomic flip.
		if err := c.closePosition(ctx, pos, domain.ReasonSignalReversal); err != nil {
			c.log.Error("reversal close failed", zap.Error(err))
			return
		}
	} else if c.cfg.MaxOpenPositions > 0 {
		count, err := c.gw.OpenPositionCount(ctx)
		if err != nil {
			c.log.Error("open position count failed", zap.Error(err))
			return
		}
		if count >= c.cfg.MaxOpenPositions {
			c.log.Info("position limit reached, skipping entry", zap.Int("open", count))
			return
		}
	}

	if err := c.enterPosition(ctx, side); err != nil {
		c.log.Error("entry failed", zap.String("side", string(side)), zap.Error(err))
	}
}

func (c *Coordinator) enterPosition(ctx context.Context, side domain.Side) error {
	balance, err := c.accountBalance(ctx)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}

	price, err := c.gw.GetCurrentPrice(ctx, c.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	stop := c.stopTake.InitialStop(side, price, c.cfg.StopLossPct, c.rules)
	qty, err := c.sizer.Quantity(SizeInputs{
		Balance:             balance,
		RiskFraction:        c.cfg.RiskFraction,
		Leverage:            c.cfg.Leverage,
		EntryPrice:          price,
		StopPrice:           stop,
		MaxExposureFraction: c.cfg.MaxExposureFraction,
		CommissionRate:      c.cfg.CommissionRate,
		Rules:               c.rules,
	})
	if err != nil {
		return fmt.Errorf("sizing: %w", err)
	}

	order, err := c.gw.PlaceMarketOrder(ctx, c.cfg.Symbol, side.OrderSide(), qty)
	if err != nil {
		return fmt.Errorf("market order: %w", err)
	}

	entry := order.AvgPrice
	if entry <= 0 {
		entry = price
	}
	filled := order.Qty
	if filled <= 0 {
		filled = qty
	}

	// Protective levels are anchored to the actual fill, both its price and
	// its size, not the request.
	stop = c.stopTake.InitialStop(side, entry, c.cfg.StopLossPct, c.rules)
	target := c.stopTake.InitialTarget(side, entry, c.cfg.TakeProfitPct, c.rules)

	if err := c.placeProtection(ctx, side, filled, stop, target); err != nil {
		c.log.Error("protective orders failed", zap.Error(err))
	}

	if err := c.book.Enter(side, filled, entry, stop, target); err != nil {
		return err
	}

	c.log.Info("position opened",
		zap.String("side", string(side)),
		zap.Float64("qty", filled),
		zap.Float64("entry", entry),
		zap.Float64("stop", stop),
		zap.Float64("target", target))
	c.notify(ctx, fmt.Sprintf("Opened %s %s: qty %s @ %s (stop %s, target %s)",
		side, c.cfg.Symbol,
		c.rules.FormatQty(filled), c.rules.FormatPrice(entry),
		c.rules.FormatPrice(stop), c.rules.FormatPrice(target)))
	return nil
}

func (c *Coordinator) closePosition(ctx context.Context, pos *domain.Position, reason string) error {
	if err := c.gw.CancelAllOpenOrders(ctx, c.cfg.Symbol); err != nil {
		c.log.Warn("cancel open orders failed", zap.Error(err))
	}

	order, err := c.gw.PlaceMarketOrder(ctx, c.cfg.Symbol, pos.Side.Opposite().OrderSide(), pos.Size)
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}

	exit := order.AvgPrice
	if exit <= 0 {
		if exit, err = c.gw.GetCurrentPrice(ctx, c.cfg.Symbol); err != nil {
			return fmt.Errorf("exit price: %w", err)
		}
	}

	if !c.book.Open() {
		c.seedBook(pos)
	}
	c.settle(ctx, exit, reason)
	return nil
}

// settleExternalClose records a trade after the exchange closed the position
// on its own, through a stop or target fill.
func (c *Coordinator) settleExternalClose(ctx context.Context) {
	price, err := c.gw.GetCurrentPrice(ctx, c.cfg.Symbol)
	if err != nil {
		c.log.Error("settle price lookup failed", zap.Error(err))
		return
	}

	reason := domain.ReasonStopLoss
	if c.book.Side() == domain.SideLong {
		if c.book.TargetPrice() > 0 && price >= c.book.TargetPrice() {
			reason = domain.ReasonTakeProfit
			price = c.book.TargetPrice()
		} else if c.book.StopPrice() > 0 {
			price = c.book.StopPrice()
		}
	} else {
		if c.book.TargetPrice() > 0 && price <= c.book.TargetPrice() {
			reason = domain.ReasonTakeProfit
			price = c.book.TargetPrice()
		} else if c.book.StopPrice() > 0 {
			price = c.book.StopPrice()
		}
	}

	if err := c.gw.CancelAllOpenOrders(ctx, c.cfg.Symbol); err != nil {
		c.log.Warn("cancel open orders failed", zap.Error(err))
	}
	c.settle(ctx, price, reason)
}

// settle closes the local book at the given price, persists the trade and
// refreshes the bot state and compounding tracker.
func (c *Coordinator) settle(ctx context.Context, exit float64, reason string) {
	commission := c.book.Size() * exit * c.cfg.CommissionRate
	trade, err := c.book.Exit(exit, commission, 0, reason, time.Now().UTC())
	if err != nil {
		c.log.Error("book exit failed", zap.Error(err))
		return
	}

	balance, err := c.accountBalance(ctx)
	if err != nil {
		c.log.Warn("post-close balance lookup failed", zap.Error(err))
		balance = c.state.CurrentBalance + trade.RealizedPnL
	}
	trade.Balance = balance

	if err := c.repo.SaveTrade(ctx, &trade); err != nil {
		c.log.Error("trade persist failed", zap.Error(err))
	}

	now := trade.Time
	c.state.TotalTrades++
	if trade.RealizedPnL > 0 {
		c.state.WinningTrades++
	} else {
		c.state.LosingTrades++
	}
	c.state.TotalProfit += trade.RealizedPnL
	if last := c.state.LastTradeTime; last != nil && !sameUTCDay(*last, now) {
		c.state.DailyProfit = 0
	}
	c.state.DailyProfit += trade.RealizedPnL
	c.state.CurrentBalance = balance
	c.state.LastTradeTime = &now
	if err := c.states.Save(c.state); err != nil {
		c.log.Warn("state save failed", zap.Error(err))
	}

	if c.comp != nil {
		if reinvest := c.comp.Observe(balance); reinvest > 0 {
			c.log.Info("compounding profit", zap.Float64("reinvest", reinvest))
			c.notify(ctx, fmt.Sprintf("Compounding: reinvesting %.2f USDT of realized profit", reinvest))
		}
	}

	c.log.Info("position closed",
		zap.String("reason", reason),
		zap.Float64("exit", exit),
		zap.Float64("pnl", trade.RealizedPnL),
		zap.Float64("balance", balance))
	c.notify(ctx, fmt.Sprintf("Closed %s %s @ %s (%s): PnL %.2f, balance %.2f",
		trade.Side, c.cfg.Symbol, c.rules.FormatPrice(exit), reason, trade.RealizedPnL, balance))
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// ReportPerformance pushes a performance summary to the notifier and records
// an equity snapshot. Driven by a ticker from the live command.
func (c *Coordinator) ReportPerformance(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return
	}

	equity := c.state.CurrentBalance
	if c.book.Open() {
		if price, err := c.gw.GetCurrentPrice(ctx, c.cfg.Symbol); err == nil {
			equity += c.book.UnrealizedPnL(price)
		} else {
			c.log.Warn("equity price lookup failed", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	if err := c.repo.SaveEquity(ctx, domain.EquityPoint{Time: now, Equity: equity}); err != nil {
		c.log.Warn("equity snapshot failed", zap.Error(err))
	}

	c.state.LastReportTime = &now
	if err := c.states.Save(c.state); err != nil {
		c.log.Warn("state save failed", zap.Error(err))
	}

	c.log.Info("performance report",
		zap.Int("trades", c.state.TotalTrades),
		zap.Float64("win_rate", c.state.WinRate()),
		zap.Float64("profit", c.state.TotalProfit),
		zap.Float64("daily_profit", c.state.DailyProfit),
		zap.Float64("equity", equity))
	c.notify(ctx, fmt.Sprintf(
		"Performance %s: %d trades (%.1f%% win), profit %.2f (today %.2f), balance %.2f, equity %.2f",
		c.cfg.Symbol, c.state.TotalTrades, c.state.WinRate(),
		c.state.TotalProfit, c.state.DailyProfit, c.state.CurrentBalance, equity))
}

// trail tightens the stop and target toward the price. Updates are strict
// improvements only; both protective orders are replaced together so the
// position is never left half-covered.
func (c *Coordinator) trail(ctx context.Context, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.book.Open() {
		return
	}

	side := c.book.Side()

	// The working orders on the exchange are the comparison baseline; the
	// book cache only covers for an open-orders lookup failure.
	curStop, curTarget := c.book.StopPrice(), c.book.TargetPrice()
	if orders, err := c.gw.GetOpenOrders(ctx, c.cfg.Symbol); err == nil {
		for _, o := range orders {
			switch o.Type {
			case "STOP_MARKET":
				curStop = o.StopPrice
			case "TAKE_PROFIT_MARKET":
				curTarget = o.StopPrice
			}
		}
	} else {
		c.log.Warn("open orders lookup failed", zap.Error(err))
	}

	newStop := c.stopTake.TrailingStop(side, price, c.cfg.TrailingStopPct, curStop, c.rules)
	newTarget := c.stopTake.TrailingTarget(side, price, c.cfg.TrailingTargetPct, curTarget, c.rules)
	if newStop == 0 && newTarget == 0 {
		return
	}

	stop := curStop
	if newStop != 0 {
		stop = newStop
	}
	target := curTarget
	if newTarget != 0 {
		target = newTarget
	}

	if err := c.gw.CancelAllOpenOrders(ctx, c.cfg.Symbol); err != nil {
		c.log.Error("trailing cancel failed", zap.Error(err))
		return
	}
	if err := c.placeProtection(ctx, side, c.book.Size(), stop, target); err != nil {
		c.log.Error("trailing replace failed", zap.Error(err))
		// The old covers were already cancelled; put them back rather than
		// leave the position naked.
		if err := c.placeProtection(ctx, side, c.book.Size(), curStop, curTarget); err != nil {
			c.log.Error("protective restore failed", zap.Error(err))
		}
		return
	}

	c.book.AdjustStop(stop)
	c.book.AdjustTarget(target)
	c.log.Info("trailing update",
		zap.Float64("price", price),
		zap.Float64("stop", stop),
		zap.Float64("target", target))
}

func (c *Coordinator) placeProtection(ctx context.Context, side domain.Side, qty, stop, target float64) error {
	closeSide := side.Opposite().OrderSide()
	if stop > 0 {
		if _, err := c.gw.PlaceStopLossOrder(ctx, c.cfg.Symbol, closeSide, qty, stop); err != nil {
			return fmt.Errorf("stop order: %w", err)
		}
	}
	if target > 0 {
		if _, err := c.gw.PlaceTakeProfitOrder(ctx, c.cfg.Symbol, closeSide, qty, target); err != nil {
			return fmt.Errorf("take profit order: %w", err)
		}
	}
	return nil
}

// adoptOpenPosition mirrors a position that survived a restart into the
// local book, reading protective levels back from the open orders.
func (c *Coordinator) adoptOpenPosition(ctx context.Context) error {
	pos, err := c.positionInfo(ctx)
	if err != nil {
		return err
	}
	if pos == nil {
		return nil
	}

	c.seedBook(pos)
	if orders, err := c.gw.GetOpenOrders(ctx, c.cfg.Symbol); err == nil {
		for _, o := range orders {
			switch o.Type {
			case "STOP_MARKET":
				c.book.AdjustStop(o.StopPrice)
			case "TAKE_PROFIT_MARKET":
				c.book.AdjustTarget(o.StopPrice)
			}
		}
	}
	c.log.Info("adopted open position",
		zap.String("side", string(pos.Side)),
		zap.Float64("size", pos.Size),
		zap.Float64("entry", pos.EntryPrice))
	return nil
}

func (c *Coordinator) seedBook(pos *domain.Position) {
	if err := c.book.Enter(pos.Side, pos.Size, pos.EntryPrice, pos.StopPrice, pos.TargetPrice); err != nil {
		c.log.Warn("book seed failed", zap.Error(err))
	}
}

func (c *Coordinator) positionInfo(ctx context.Context) (*domain.Position, error) {
	return Retry(ctx, c.cfg.RetryCount, c.cfg.RetryDelay, c.cfg.RetryMaxDelay,
		func(ctx context.Context) (*domain.Position, error) {
			return c.gw.GetPositionInfo(ctx, c.cfg.Symbol)
		})
}

func (c *Coordinator) accountBalance(ctx context.Context) (float64, error) {
	return Retry(ctx, c.cfg.RetryCount, c.cfg.RetryDelay, c.cfg.RetryMaxDelay,
		func(ctx context.Context) (float64, error) {
			return c.gw.GetAccountBalance(ctx)
		})
}

func (c *Coordinator) notify(ctx context.Context, msg string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, msg); err != nil {
		c.log.Warn("notification failed", zap.Error(err))
	}
}
