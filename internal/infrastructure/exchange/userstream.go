package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
)

const listenKeyKeepAlive = 30 * time.Minute

// ListenKeyer mints and renews the listen key that authenticates the
// user-data stream.
type ListenKeyer interface {
	CreateListenKey(ctx context.Context) (string, error)
	KeepAliveListenKey(ctx context.Context) error
}

// OrderUpdateHandler fires on ORDER_TRADE_UPDATE events.
type OrderUpdateHandler func(u domain.OrderUpdate)

// AccountUpdateHandler fires with the new USDT wallet balance on
// ACCOUNT_UPDATE events.
type AccountUpdateHandler func(balance float64)

// UserStream subscribes to the authenticated user-data stream and dispatches
// order fills and balance changes to registered handlers. A reconnect mints a
// fresh listen key; a keep-alive ping renews the current one every half hour.
type UserStream struct {
	wsURL string
	keys  ListenKeyer
	log   *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	onOrder   OrderUpdateHandler
	onAccount AccountUpdateHandler

	done   chan struct{}
	closed sync.Once
}

func NewUserStream(wsURL string, keys ListenKeyer, log *zap.Logger) *UserStream {
	return &UserStream{
		wsURL: wsURL,
		keys:  keys,
		log:   log,
		done:  make(chan struct{}),
	}
}

func (u *UserStream) OnOrderUpdate(h OrderUpdateHandler) {
	u.mu.Lock()
	u.onOrder = h
	u.mu.Unlock()
}

func (u *UserStream) OnAccountUpdate(h AccountUpdateHandler) {
	u.mu.Lock()
	u.onAccount = h
	u.mu.Unlock()
}

// Connect mints a listen key, dials the stream and starts the read and
// keep-alive loops. It returns after the first successful dial; later
// disconnects are handled internally.
func (u *UserStream) Connect(ctx context.Context) error {
	conn, err := u.dial(ctx)
	if err != nil {
		return err
	}

	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()

	go u.readLoop(ctx)
	go u.keepAliveLoop(ctx)
	return nil
}

func (u *UserStream) dial(ctx context.Context) (*websocket.Conn, error) {
	key, err := u.keys.CreateListenKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("listen key: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsDialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.wsURL+"/ws/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("dial user stream: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	return conn, nil
}

func (u *UserStream) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(listenKeyKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := u.keys.KeepAliveListenKey(ctx); err != nil {
				u.log.Warn("listen key keep-alive failed", zap.Error(err))
			}
		case <-u.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (u *UserStream) readLoop(ctx context.Context) {
	backoff := wsReconnectMin
	for {
		err := u.readMessages(ctx)

		select {
		case <-u.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		u.log.Warn("user stream disconnected, reconnecting",
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-u.done:
			return
		case <-ctx.Done():
			return
		}
		if backoff *= 2; backoff > wsReconnectMax {
			backoff = wsReconnectMax
		}

		conn, err := u.dial(ctx)
		if err != nil {
			u.log.Warn("user stream redial failed", zap.Error(err))
			continue
		}
		u.mu.Lock()
		u.conn = conn
		u.mu.Unlock()
		backoff = wsReconnectMin
	}
}

func (u *UserStream) readMessages(ctx context.Context) error {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		u.dispatch(raw)
	}
}

type orderTradeUpdate struct {
	Order struct {
		Symbol      string `json:"s"`
		OrderID     int64  `json:"i"`
		Side        string `json:"S"`
		OrigType    string `json:"ot"`
		Status      string `json:"X"`
		AvgPrice    string `json:"ap"`
		CumQty      string `json:"z"`
		RealizedPnL string `json:"rp"`
	} `json:"o"`
}

type accountUpdate struct {
	Data struct {
		Balances []struct {
			Asset         string `json:"a"`
			WalletBalance string `json:"wb"`
		} `json:"B"`
	} `json:"a"`
}

func (u *UserStream) dispatch(raw []byte) {
	var head struct {
		Event string `json:"e"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		u.log.Debug("unparseable user stream frame", zap.Error(err))
		return
	}

	u.mu.Lock()
	onOrder, onAccount := u.onOrder, u.onAccount
	u.mu.Unlock()

	switch head.Event {
	case "ORDER_TRADE_UPDATE":
		var evt orderTradeUpdate
		if err := json.Unmarshal(raw, &evt); err != nil {
			u.log.Debug("bad order update frame", zap.Error(err))
			return
		}
		if onOrder == nil {
			return
		}
		o := evt.Order
		onOrder(domain.OrderUpdate{
			OrderID:     o.OrderID,
			Symbol:      o.Symbol,
			Side:        o.Side,
			Type:        o.OrigType,
			Status:      o.Status,
			AvgPrice:    parseFloat(o.AvgPrice),
			FilledQty:   parseFloat(o.CumQty),
			RealizedPnL: parseFloat(o.RealizedPnL),
		})
	case "ACCOUNT_UPDATE":
		var evt accountUpdate
		if err := json.Unmarshal(raw, &evt); err != nil {
			u.log.Debug("bad account update frame", zap.Error(err))
			return
		}
		if onAccount == nil {
			return
		}
		for _, b := range evt.Data.Balances {
			if b.Asset != "USDT" {
				continue
			}
			if bal := parseFloat(b.WalletBalance); bal > 0 {
				onAccount(bal)
			}
		}
	}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// Close stops the loops and closes the connection.
func (u *UserStream) Close() {
	u.closed.Do(func() { close(u.done) })

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn != nil {
		u.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		u.conn.Close()
		u.conn = nil
	}
}
