package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/vitos/futures-trader/internal/domain"
)

// TradeLog mirrors the trade ledger into a single JSON array on disk, the
// file a human reaches for first when checking what the bot did.
type TradeLog struct {
	path string
	mu   sync.Mutex
}

func NewTradeLog(path string) *TradeLog {
	return &TradeLog{path: path}
}

// Append rewrites the file with the trade added. An unreadable existing file
// starts a fresh array rather than blocking the ledger.
func (l *TradeLog) Append(trade *domain.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var trades []domain.Trade
	raw, err := os.ReadFile(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("trade log: %w", err)
	default:
		if json.Unmarshal(raw, &trades) != nil {
			trades = nil
		}
	}
	trades = append(trades, *trade)

	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("trade log: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("trade log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("trade log: %w", err)
	}
	return nil
}
