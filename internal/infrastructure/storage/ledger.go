package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
)

// Ledger couples the sqlite store with the JSON mirror. The database is the
// record of truth; a mirror failure is logged, never surfaced, so it cannot
// block trade settlement.
type Ledger struct {
	db  *SQLiteStore
	log *TradeLog
	lg  *zap.Logger
}

func NewLedger(db *SQLiteStore, log *TradeLog, lg *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log, lg: lg}
}

func (l *Ledger) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	if err := l.db.SaveTrade(ctx, trade); err != nil {
		return err
	}
	if l.log != nil {
		if err := l.log.Append(trade); err != nil {
			l.lg.Warn("trade mirror write failed", zap.Error(err))
		}
	}
	return nil
}

func (l *Ledger) ListTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	return l.db.ListTrades(ctx, limit)
}

func (l *Ledger) SaveEquity(ctx context.Context, point domain.EquityPoint) error {
	return l.db.SaveEquity(ctx, point)
}
