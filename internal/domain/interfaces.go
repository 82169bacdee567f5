package domain

import "context"

// Gateway is the wire-level boundary to the exchange. Implementations own
// REST retry details and WebSocket framing; callers treat sentinel failure
// values (0, nil) as "unknown", never as confirmed zero.
type Gateway interface {
	GetAccountBalance(ctx context.Context) (float64, error)
	GetPositionInfo(ctx context.Context, symbol string) (*Position, error)
	GetSymbolInfo(ctx context.Context, symbol string) (*PrecisionRules, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	OpenPositionCount(ctx context.Context) (int, error)

	PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*OrderResult, error)
	PlaceStopLossOrder(ctx context.Context, symbol, side string, qty, stopPrice float64) (*OrderResult, error)
	PlaceTakeProfitOrder(ctx context.Context, symbol, side string, qty, stopPrice float64) (*OrderResult, error)
	CancelAllOpenOrders(ctx context.Context, symbol string) error
	GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error)
}

// OrderResult is the exchange acknowledgement of a placed order.
type OrderResult struct {
	OrderID   int64
	Symbol    string
	Side      string
	Qty       float64
	AvgPrice  float64
	Status    string
	StopPrice float64
}

// OpenOrder is a resting order reported by the exchange.
type OpenOrder struct {
	OrderID   int64
	Symbol    string
	Side      string
	Type      string // STOP_MARKET, TAKE_PROFIT_MARKET
	Qty       float64
	StopPrice float64
}

// OrderUpdate is a fill report from the user-data stream.
type OrderUpdate struct {
	OrderID     int64
	Symbol      string
	Side        string
	Type        string // original order type, e.g. STOP_MARKET
	Status      string
	AvgPrice    float64
	FilledQty   float64
	RealizedPnL float64
}

// SignalSource produces a directional call from ordered candle history.
// Implementations are pure: identical history yields an identical signal.
type SignalSource interface {
	Name() string
	Signal(candles []Candle) Signal
}

// Notifier pushes human-readable events to an external channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// TradeRepository is the append-only trade ledger.
type TradeRepository interface {
	SaveTrade(ctx context.Context, trade *Trade) error
	ListTrades(ctx context.Context, limit int) ([]*Trade, error)
	SaveEquity(ctx context.Context, point EquityPoint) error
}
