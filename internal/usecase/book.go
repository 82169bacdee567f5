package usecase

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vitos/futures-trader/internal/domain"
)

// PositionBook is the single-position state machine for one symbol:
// Flat or Open(side). Entries are only possible from Flat, exits only from
// Open, and a reversal is always two transitions (exit then enter), never an
// atomic flip.
type PositionBook struct {
	symbol string

	open   bool
	side   domain.Side
	size   float64
	entry  float64
	stop   float64
	target float64
}

func NewPositionBook(symbol string) *PositionBook {
	return &PositionBook{symbol: symbol}
}

// Open reports whether a position is currently held.
func (b *PositionBook) Open() bool { return b.open }

// Side returns the open side; meaningless while flat.
func (b *PositionBook) Side() domain.Side { return b.side }

// Size returns the open quantity, 0 while flat.
func (b *PositionBook) Size() float64 {
	if !b.open {
		return 0
	}
	return b.size
}

func (b *PositionBook) EntryPrice() float64 { return b.entry }
func (b *PositionBook) StopPrice() float64  { return b.stop }
func (b *PositionBook) TargetPrice() float64 {
	return b.target
}

// Enter transitions Flat -> Open(side). Rejected while already open.
func (b *PositionBook) Enter(side domain.Side, size, entryPrice, stopPrice, targetPrice float64) error {
	if b.open {
		return domain.ErrAlreadyInPosition
	}
	if size <= 0 {
		return domain.ErrInsufficientSize
	}
	b.open = true
	b.side = side
	b.size = size
	b.entry = entryPrice
	b.stop = stopPrice
	b.target = targetPrice
	return nil
}

// Exit transitions Open -> Flat, computing realized PnL net of the given
// commission and emitting the ledger record. balanceAfter is stamped on the
// trade by the caller once the balance is settled.
func (b *PositionBook) Exit(exitPrice, commission, slippagePct float64, reason string, at time.Time) (domain.Trade, error) {
	if !b.open {
		return domain.Trade{}, domain.ErrNoPosition
	}

	var pnl float64
	if b.side == domain.SideLong {
		pnl = (exitPrice - b.entry) * b.size
	} else {
		pnl = (b.entry - exitPrice) * b.size
	}
	pnl -= commission

	trade := domain.Trade{
		ID:          ulid.Make().String(),
		Symbol:      b.symbol,
		Side:        b.side,
		Size:        b.size,
		EntryPrice:  b.entry,
		ExitPrice:   exitPrice,
		Commission:  commission,
		SlippagePct: slippagePct,
		RealizedPnL: pnl,
		Reason:      reason,
		Time:        at,
	}

	b.open = false
	b.side = ""
	b.size = 0
	b.entry = 0
	b.stop = 0
	b.target = 0

	return trade, nil
}

// AdjustStop tightens the stop. Only called with a non-zero candidate the
// calculator already validated.
func (b *PositionBook) AdjustStop(price float64) error {
	if !b.open {
		return domain.ErrNoPosition
	}
	b.stop = price
	return nil
}

// AdjustTarget moves the take-profit. Same contract as AdjustStop.
func (b *PositionBook) AdjustTarget(price float64) error {
	if !b.open {
		return domain.ErrNoPosition
	}
	b.target = price
	return nil
}

// UnrealizedPnL marks the open position to the given price, 0 while flat.
func (b *PositionBook) UnrealizedPnL(price float64) float64 {
	if !b.open {
		return 0
	}
	if b.side == domain.SideLong {
		return (price - b.entry) * b.size
	}
	return (b.entry - price) * b.size
}
