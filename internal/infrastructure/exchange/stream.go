package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsDialTimeout  = 10 * time.Second
	wsPongWait     = 90 * time.Second
	wsReconnectMin = time.Second
	wsReconnectMax = 30 * time.Second
)

// KlineHandler fires once per closed candle.
type KlineHandler func()

// TickHandler fires on every best-bid update.
type TickHandler func(price float64)

// MarketStream subscribes to the combined kline and bookTicker streams for
// one symbol and dispatches to registered handlers. It reconnects with
// backoff until Close is called.
type MarketStream struct {
	wsURL     string
	symbol    string
	timeframe string
	log       *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	onKline KlineHandler
	onTick  TickHandler

	done   chan struct{}
	closed sync.Once
}

func NewMarketStream(wsURL, symbol, timeframe string, log *zap.Logger) *MarketStream {
	return &MarketStream{
		wsURL:     wsURL,
		symbol:    symbol,
		timeframe: timeframe,
		log:       log,
		done:      make(chan struct{}),
	}
}

func (m *MarketStream) OnKlineClosed(h KlineHandler) {
	m.mu.Lock()
	m.onKline = h
	m.mu.Unlock()
}

func (m *MarketStream) OnPriceTick(h TickHandler) {
	m.mu.Lock()
	m.onTick = h
	m.mu.Unlock()
}

// streamURL builds the combined-stream endpoint, e.g.
// wss://fstream.binance.com/stream?streams=adausdt@kline_15m/adausdt@bookTicker
func (m *MarketStream) streamURL() string {
	sym := strings.ToLower(m.symbol)
	return fmt.Sprintf("%s/stream?streams=%s@kline_%s/%s@bookTicker", m.wsURL, sym, m.timeframe, sym)
}

// Connect dials the stream and starts the read loop. It returns after the
// first successful dial; later disconnects are handled internally.
func (m *MarketStream) Connect(ctx context.Context) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	go m.readLoop(ctx)
	return nil
}

func (m *MarketStream) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: wsDialTimeout}
	conn, _, err := dialer.DialContext(ctx, m.streamURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", m.streamURL(), err)
	}

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	return conn, nil
}

func (m *MarketStream) readLoop(ctx context.Context) {
	backoff := wsReconnectMin
	for {
		err := m.readMessages(ctx)

		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		m.log.Warn("market stream disconnected, reconnecting",
			zap.String("symbol", m.symbol),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-m.done:
			return
		case <-ctx.Done():
			return
		}
		if backoff *= 2; backoff > wsReconnectMax {
			backoff = wsReconnectMax
		}

		conn, err := m.dial(ctx)
		if err != nil {
			m.log.Warn("market stream redial failed", zap.Error(err))
			continue
		}
		m.mu.Lock()
		m.conn = conn
		m.mu.Unlock()
		backoff = wsReconnectMin
	}
}

func (m *MarketStream) readMessages(ctx context.Context) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		m.dispatch(raw)
	}
}

// combinedEvent is the envelope of the multiplexed stream endpoint.
type combinedEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type klineEvent struct {
	Kline struct {
		Closed bool   `json:"x"`
		Close  string `json:"c"`
	} `json:"k"`
}

type bookTickerEvent struct {
	BestBid string `json:"b"`
}

func (m *MarketStream) dispatch(raw []byte) {
	var evt combinedEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		m.log.Debug("unparseable stream frame", zap.Error(err))
		return
	}

	m.mu.Lock()
	onKline, onTick := m.onKline, m.onTick
	m.mu.Unlock()

	switch {
	case strings.Contains(evt.Stream, "@kline_"):
		var k klineEvent
		if err := json.Unmarshal(evt.Data, &k); err != nil {
			m.log.Debug("bad kline frame", zap.Error(err))
			return
		}
		if k.Kline.Closed && onKline != nil {
			onKline()
		}
	case strings.Contains(evt.Stream, "@bookTicker"):
		var bt bookTickerEvent
		if err := json.Unmarshal(evt.Data, &bt); err != nil {
			return
		}
		price, err := strconv.ParseFloat(bt.BestBid, 64)
		if err != nil || price <= 0 {
			return
		}
		if onTick != nil {
			onTick(price)
		}
	}
}

// Close stops the read loop and closes the connection.
func (m *MarketStream) Close() {
	m.closed.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		m.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.conn.Close()
		m.conn = nil
	}
}
