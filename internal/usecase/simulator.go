package usecase

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
)

// SimulatorConfig holds every knob of a backtest run. The two exposure caps
// are deliberately separate: EntryExposureFraction bounds backtest entries,
// MaxExposureFraction is the general sanity cap used inside sizing.
type SimulatorConfig struct {
	Symbol    string
	Timeframe string

	InitialBalance float64
	CommissionRate float64
	Leverage       int
	RiskFraction   float64

	StopLossPct   float64
	TakeProfitPct float64

	EntryExposureFraction float64 // 0.2
	MaxExposureFraction   float64 // 0.5

	// ExecutionProbability gates signals: a draw at or above it models a
	// missed fill. 1.0 executes everything.
	ExecutionProbability float64

	AutoCompound    bool
	ReinvestPercent float64

	WarmupBars int // >= 30

	Rules domain.PrecisionRules
}

// Simulator replays an ordered candle sequence through the same sizing,
// stop/take and position logic the live coordinator uses. Single-threaded
// and deterministic for a given Sampler.
type Simulator struct {
	cfg      SimulatorConfig
	strategy domain.SignalSource
	sampler  Sampler
	log      *zap.Logger

	sizer    Sizer
	stopTake StopTake
	book     *PositionBook

	balance         float64
	trades          []domain.Trade
	equity          []domain.EquityPoint
	totalTrades     int
	winningTrades   int
	losingTrades    int
	totalReinvested float64
}

// Slippage bounds, sampled uniformly against the trader. Exits slip more
// than entries.
const (
	entrySlipLo = 0.0005
	entrySlipHi = 0.0015
	exitSlipLo  = 0.0005
	exitSlipHi  = 0.002
)

func NewSimulator(cfg SimulatorConfig, strategy domain.SignalSource, sampler Sampler, log *zap.Logger) *Simulator {
	if cfg.WarmupBars < 30 {
		cfg.WarmupBars = 30
	}
	if sampler == nil {
		sampler = NewRandomSampler(time.Now().UnixNano())
	}
	return &Simulator{
		cfg:      cfg,
		strategy: strategy,
		sampler:  sampler,
		log:      log,
		book:     NewPositionBook(cfg.Symbol),
		balance:  cfg.InitialBalance,
	}
}

// SimOutput is the raw product of a run: the ledger, the equity curve and the
// final counters. The Analyzer turns it into a BacktestResult.
type SimOutput struct {
	Trades          []domain.Trade
	EquityCurve     []domain.EquityPoint
	FinalBalance    float64
	InitialBalance  float64
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	TotalReinvested float64
	Start           time.Time
	End             time.Time
}

// Run replays the candles. It needs at least WarmupBars+1 bars of history so
// strategies have indicator runway.
func (s *Simulator) Run(candles []domain.Candle) (*SimOutput, error) {
	if len(candles) <= s.cfg.WarmupBars {
		return nil, fmt.Errorf("backtest: need more than %d candles, got %d", s.cfg.WarmupBars, len(candles))
	}

	for i := s.cfg.WarmupBars; i < len(candles); i++ {
		c := candles[i]
		at := c.OpenedAt()

		// Stops and targets are checked against the bar extremes before
		// any new signal is considered.
		if s.book.Open() {
			if s.checkStopTarget(c.High, c.Low, at) {
				s.recordEquity(at, c.Close)
				continue
			}
		}

		signal := s.strategy.Signal(candles[:i+1])
		execute := s.sampler.Draw() < s.cfg.ExecutionProbability

		switch {
		case signal == domain.SignalBuy && execute && (!s.book.Open() || s.book.Side() == domain.SideShort):
			if s.book.Open() && s.book.Side() == domain.SideShort {
				s.exit(c.Close, at, domain.ReasonSignalReversal)
			}
			s.enter(domain.SideLong, c.Close)

		case signal == domain.SignalSell && execute && (!s.book.Open() || s.book.Side() == domain.SideLong):
			if s.book.Open() && s.book.Side() == domain.SideLong {
				s.exit(c.Close, at, domain.ReasonSignalReversal)
			}
			s.enter(domain.SideShort, c.Close)
		}

		s.recordEquity(at, c.Close)
	}

	if s.book.Open() {
		last := candles[len(candles)-1]
		s.exit(last.Close, last.OpenedAt(), domain.ReasonBacktestEnd)
	}

	return &SimOutput{
		Trades:          s.trades,
		EquityCurve:     s.equity,
		FinalBalance:    s.balance,
		InitialBalance:  s.cfg.InitialBalance,
		TotalTrades:     s.totalTrades,
		WinningTrades:   s.winningTrades,
		LosingTrades:    s.losingTrades,
		TotalReinvested: s.totalReinvested,
		Start:           candles[s.cfg.WarmupBars].OpenedAt(),
		End:             candles[len(candles)-1].OpenedAt(),
	}, nil
}

// checkStopTarget exits at the triggered price when the bar range touched the
// stop or target. Stop wins when both are inside the same bar.
func (s *Simulator) checkStopTarget(high, low float64, at time.Time) bool {
	stop := s.book.StopPrice()
	target := s.book.TargetPrice()

	if s.book.Side() == domain.SideLong {
		if stop > 0 && low <= stop {
			s.exit(stop, at, domain.ReasonStopLoss)
			return true
		}
		if target > 0 && high >= target {
			s.exit(target, at, domain.ReasonTakeProfit)
			return true
		}
		return false
	}

	if stop > 0 && high >= stop {
		s.exit(stop, at, domain.ReasonStopLoss)
		return true
	}
	if target > 0 && low <= target {
		s.exit(target, at, domain.ReasonTakeProfit)
		return true
	}
	return false
}

func (s *Simulator) enter(side domain.Side, price float64) {
	stop := s.stopTake.InitialStop(side, price, s.cfg.StopLossPct, s.cfg.Rules)
	target := s.stopTake.InitialTarget(side, price, s.cfg.TakeProfitPct, s.cfg.Rules)

	qty, err := s.sizer.Quantity(SizeInputs{
		Balance:             s.balance,
		RiskFraction:        s.cfg.RiskFraction,
		Leverage:            s.cfg.Leverage,
		EntryPrice:          price,
		StopPrice:           stop,
		MaxExposureFraction: s.cfg.MaxExposureFraction,
		CommissionRate:      s.cfg.CommissionRate,
		Rules:               s.cfg.Rules,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientSize) && s.log != nil {
			s.log.Warn("sizing failed", zap.Error(err))
		}
		return
	}

	// Entry slips against the trader.
	slip := s.sampler.Uniform(entrySlipLo, entrySlipHi)
	execPrice := price * (1 + slip)
	if side == domain.SideShort {
		execPrice = price * (1 - slip)
	}

	lev := float64(s.cfg.Leverage)

	// The stricter per-entry cap applies on top of the sizing cap.
	maxCost := s.balance * s.cfg.EntryExposureFraction
	if qty*execPrice/lev > maxCost {
		qty = s.cfg.Rules.FloorQty(maxCost * lev / execPrice)
	}

	commission := qty * execPrice * s.cfg.CommissionRate
	cost := qty * execPrice / lev
	if cost+commission > s.balance {
		qty = s.cfg.Rules.FloorQty((s.balance - commission) * lev / execPrice)
		commission = qty * execPrice * s.cfg.CommissionRate
	}
	if qty <= 0 || qty < s.cfg.Rules.MinQty {
		return
	}

	if err := s.book.Enter(side, qty, execPrice, stop, target); err != nil {
		return
	}
	s.balance -= commission
}

func (s *Simulator) exit(price float64, at time.Time, reason string) {
	// Exit slips against the trader too.
	slip := s.sampler.Uniform(exitSlipLo, exitSlipHi)
	execPrice := price * (1 - slip)
	if s.book.Side() == domain.SideShort {
		execPrice = price * (1 + slip)
	}

	commission := s.book.Size() * execPrice * s.cfg.CommissionRate

	trade, err := s.book.Exit(execPrice, commission, slip*100, reason, at)
	if err != nil {
		return
	}

	pnl := trade.RealizedPnL

	// On a profitable close with compounding on, the reinvested share is
	// withheld from the balance rather than redeposited.
	reinvested := 0.0
	if s.cfg.AutoCompound && pnl > 0 {
		reinvested = pnl * s.cfg.ReinvestPercent
	}
	s.balance += pnl - reinvested
	s.totalReinvested += reinvested

	s.totalTrades++
	if pnl > 0 {
		s.winningTrades++
	} else {
		s.losingTrades++
	}

	trade.Balance = s.balance
	s.trades = append(s.trades, trade)
}

// recordEquity marks the open position to the close, net of the estimated
// commission a close at that price would cost.
func (s *Simulator) recordEquity(at time.Time, price float64) {
	equity := s.balance
	if s.book.Open() {
		unrealized := s.book.UnrealizedPnL(price)
		unrealized -= s.book.Size() * price * s.cfg.CommissionRate
		equity += unrealized
	}
	s.equity = append(s.equity, domain.EquityPoint{Time: at, Equity: equity})
}
