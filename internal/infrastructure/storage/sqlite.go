package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitos/futures-trader/internal/domain"
)

// SQLiteStore is the durable trade ledger and equity history.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			quantity REAL NOT NULL,
			entry_price REAL NOT NULL,
			exit_price REAL NOT NULL,
			commission REAL NOT NULL,
			commission_asset TEXT,
			slippage_pct REAL NOT NULL DEFAULT 0,
			realized_profit REAL NOT NULL,
			reason TEXT NOT NULL,
			balance REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades(created_at);`,
		`CREATE TABLE IF NOT EXISTS equity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			equity REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// TradeRepository implementation

func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	query := `INSERT INTO trades (id, symbol, side, quantity, entry_price, exit_price, commission, commission_asset, slippage_pct, realized_profit, reason, balance, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		trade.ID, trade.Symbol, string(trade.Side), trade.Size, trade.EntryPrice, trade.ExitPrice,
		trade.Commission, trade.CommAsset, trade.SlippagePct, trade.RealizedPnL, trade.Reason,
		trade.Balance, trade.Time)
	return err
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `SELECT id, symbol, side, quantity, entry_price, exit_price, commission, commission_asset, slippage_pct, realized_profit, reason, balance, created_at
			  FROM trades ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		var side string
		var asset sql.NullString
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.Size, &t.EntryPrice, &t.ExitPrice,
			&t.Commission, &asset, &t.SlippagePct, &t.RealizedPnL, &t.Reason, &t.Balance, &t.Time); err != nil {
			return nil, err
		}
		t.Side = domain.Side(side)
		t.CommAsset = asset.String
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

func (s *SQLiteStore) SaveEquity(ctx context.Context, point domain.EquityPoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO equity (equity, created_at) VALUES (?, ?)`,
		point.Equity, point.Time)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
