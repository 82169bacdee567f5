// Package exchange implements the Gateway against Binance USDT-margined
// futures: signed REST for account and orders, WebSocket for market data.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/usecase"
)

// BinanceAdapter talks to the Binance futures REST API. All signed calls
// carry a timestamp plus HMAC-SHA256 signature over the query string.
type BinanceAdapter struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow int
	client     *http.Client
	log        *zap.Logger
}

func NewBinanceAdapter(apiKey, apiSecret, baseURL string, recvWindow int, log *zap.Logger) *BinanceAdapter {
	if recvWindow <= 0 {
		recvWindow = 10000
	}
	return &BinanceAdapter{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		recvWindow: recvWindow,
		client:     &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// --- REST plumbing ---

func (b *BinanceAdapter) sign(query string) string {
	h := hmac.New(sha256.New, []byte(b.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// apiError is the {"code":-XXXX,"msg":"..."} body Binance returns on 4xx.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance: code %d: %s", e.Code, e.Msg)
}

func (b *BinanceAdapter) sendRequest(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", strconv.Itoa(b.recvWindow))
		params.Set("signature", b.sign(params.Encode()))
	}

	reqURL := b.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if b.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &usecase.Transient{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &usecase.Transient{Err: err}
	}

	if resp.StatusCode >= 400 {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Code != 0 {
			// Rate limits and temporary bans are worth retrying.
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 || ae.Code == -1003 {
				return nil, &usecase.Transient{Err: &ae}
			}
			return nil, &ae
		}
		err := fmt.Errorf("binance: status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &usecase.Transient{Err: err}
		}
		return nil, err
	}

	return body, nil
}

// --- account ---

// GetAccountBalance returns the available USDT balance of the futures wallet.
func (b *BinanceAdapter) GetAccountBalance(ctx context.Context) (float64, error) {
	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v2/balance", nil, true)
	if err != nil {
		return 0, err
	}

	var balances []struct {
		Asset            string `json:"asset"`
		AvailableBalance string `json:"availableBalance"`
	}
	if err := json.Unmarshal(body, &balances); err != nil {
		return 0, fmt.Errorf("binance: parse balance: %w", err)
	}

	for _, bal := range balances {
		if bal.Asset == "USDT" {
			return strconv.ParseFloat(bal.AvailableBalance, 64)
		}
	}
	return 0, fmt.Errorf("binance: no USDT balance in response")
}

func (b *BinanceAdapter) positionRisk(ctx context.Context, symbol string) ([]positionRiskEntry, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}
	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v2/positionRisk", params, true)
	if err != nil {
		return nil, err
	}

	var entries []positionRiskEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("binance: parse position risk: %w", err)
	}
	return entries, nil
}

type positionRiskEntry struct {
	Symbol           string `json:"symbol"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	UnrealizedProfit string `json:"unRealizedProfit"`
	Leverage         string `json:"leverage"`
	MarginType       string `json:"marginType"`
}

// GetPositionInfo returns the open position for symbol, or nil when flat.
func (b *BinanceAdapter) GetPositionInfo(ctx context.Context, symbol string) (*domain.Position, error) {
	entries, err := b.positionRisk(ctx, symbol)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		amt, err := strconv.ParseFloat(e.PositionAmt, 64)
		if err != nil || amt == 0 {
			continue
		}

		entry, _ := strconv.ParseFloat(e.EntryPrice, 64)
		pnl, _ := strconv.ParseFloat(e.UnrealizedProfit, 64)
		lev, _ := strconv.Atoi(e.Leverage)

		side := domain.SideLong
		size := amt
		if amt < 0 {
			side = domain.SideShort
			size = -amt
		}
		return &domain.Position{
			Symbol:        e.Symbol,
			Side:          side,
			Size:          size,
			EntryPrice:    entry,
			UnrealizedPnL: pnl,
			Leverage:      lev,
			Isolated:      strings.EqualFold(e.MarginType, "isolated"),
		}, nil
	}
	return nil, nil
}

// OpenPositionCount counts symbols with a non-zero position.
func (b *BinanceAdapter) OpenPositionCount(ctx context.Context) (int, error) {
	entries, err := b.positionRisk(ctx, "")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if amt, err := strconv.ParseFloat(e.PositionAmt, 64); err == nil && amt != 0 {
			count++
		}
	}
	return count, nil
}

// --- market data ---

// GetSymbolInfo extracts the precision rules from the exchangeInfo filters.
func (b *BinanceAdapter) GetSymbolInfo(ctx context.Context, symbol string) (*domain.PrecisionRules, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v1/exchangeInfo", params, false)
	if err != nil {
		return nil, err
	}

	var info struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Filters []struct {
				FilterType string `json:"filterType"`
				TickSize   string `json:"tickSize"`
				StepSize   string `json:"stepSize"`
				MinQty     string `json:"minQty"`
				Notional   string `json:"notional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("binance: parse exchange info: %w", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		rules := &domain.PrecisionRules{Symbol: symbol}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				rules.PriceStep, _ = strconv.ParseFloat(f.TickSize, 64)
			case "LOT_SIZE":
				rules.QtyStep, _ = strconv.ParseFloat(f.StepSize, 64)
				rules.MinQty, _ = strconv.ParseFloat(f.MinQty, 64)
			case "MIN_NOTIONAL":
				rules.MinNotional, _ = strconv.ParseFloat(f.Notional, 64)
			}
		}
		return rules, nil
	}
	return nil, fmt.Errorf("binance: symbol %s not in exchange info", symbol)
}

func (b *BinanceAdapter) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v1/ticker/price", params, false)
	if err != nil {
		return 0, err
	}

	var ticker struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("binance: parse ticker: %w", err)
	}
	return strconv.ParseFloat(ticker.Price, 64)
}

// GetKlines fetches up to limit candles for the interval, oldest first.
func (b *BinanceAdapter) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v1/klines", params, false)
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

// GetKlinesRange fetches candles between start and end millisecond
// timestamps, paging through the 1500-candle response cap.
func (b *BinanceAdapter) GetKlinesRange(ctx context.Context, symbol, interval string, start, end int64) ([]domain.Candle, error) {
	const pageSize = 1500

	var all []domain.Candle
	cursor := start
	for cursor < end {
		params := url.Values{}
		params.Set("symbol", symbol)
		params.Set("interval", interval)
		params.Set("startTime", strconv.FormatInt(cursor, 10))
		params.Set("endTime", strconv.FormatInt(end, 10))
		params.Set("limit", strconv.Itoa(pageSize))

		body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v1/klines", params, false)
		if err != nil {
			return nil, err
		}
		page, err := parseKlines(body)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		cursor = page[len(page)-1].CloseTime + 1
		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}

// parseKlines decodes the positional kline arrays Binance returns.
func parseKlines(body []byte) ([]domain.Candle, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("binance: parse klines: %w", err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 7 {
			return nil, fmt.Errorf("binance: short kline row: %d fields", len(k))
		}
		var c domain.Candle
		if err := json.Unmarshal(k[0], &c.OpenTime); err != nil {
			return nil, fmt.Errorf("binance: kline open time: %w", err)
		}
		if err := json.Unmarshal(k[6], &c.CloseTime); err != nil {
			return nil, fmt.Errorf("binance: kline close time: %w", err)
		}
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			var s string
			if err := json.Unmarshal(k[i+1], &s); err != nil {
				return nil, fmt.Errorf("binance: kline field %d: %w", i+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("binance: kline field %d: %w", i+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// --- orders ---

type orderResponse struct {
	OrderID  int64  `json:"orderId"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Status   string `json:"status"`
	AvgPrice string `json:"avgPrice"`
	ExecQty  string `json:"executedQty"`
	StopPrice string `json:"stopPrice"`
}

func (b *BinanceAdapter) placeOrder(ctx context.Context, params url.Values) (*domain.OrderResult, error) {
	body, err := b.sendRequest(ctx, http.MethodPost, "/fapi/v1/order", params, true)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("binance: parse order response: %w", err)
	}

	avg, _ := strconv.ParseFloat(resp.AvgPrice, 64)
	qty, _ := strconv.ParseFloat(resp.ExecQty, 64)
	stop, _ := strconv.ParseFloat(resp.StopPrice, 64)
	return &domain.OrderResult{
		OrderID:   resp.OrderID,
		Symbol:    resp.Symbol,
		Side:      resp.Side,
		Qty:       qty,
		AvgPrice:  avg,
		Status:    resp.Status,
		StopPrice: stop,
	}, nil
}

// PlaceMarketOrder submits a market order and returns the fill.
func (b *BinanceAdapter) PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(qty, 'f', -1, 64))
	params.Set("newOrderRespType", "RESULT")
	return b.placeOrder(ctx, params)
}

// PlaceStopLossOrder parks a reduce-only STOP_MARKET at stopPrice.
func (b *BinanceAdapter) PlaceStopLossOrder(ctx context.Context, symbol, side string, qty, stopPrice float64) (*domain.OrderResult, error) {
	return b.placeProtective(ctx, "STOP_MARKET", symbol, side, qty, stopPrice)
}

// PlaceTakeProfitOrder parks a reduce-only TAKE_PROFIT_MARKET at stopPrice.
func (b *BinanceAdapter) PlaceTakeProfitOrder(ctx context.Context, symbol, side string, qty, stopPrice float64) (*domain.OrderResult, error) {
	return b.placeProtective(ctx, "TAKE_PROFIT_MARKET", symbol, side, qty, stopPrice)
}

func (b *BinanceAdapter) placeProtective(ctx context.Context, orderType, symbol, side string, qty, stopPrice float64) (*domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", orderType)
	params.Set("quantity", strconv.FormatFloat(qty, 'f', -1, 64))
	params.Set("stopPrice", strconv.FormatFloat(stopPrice, 'f', -1, 64))
	params.Set("reduceOnly", "true")
	params.Set("workingType", "MARK_PRICE")
	return b.placeOrder(ctx, params)
}

// CancelAllOpenOrders removes every resting order for the symbol.
func (b *BinanceAdapter) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	_, err := b.sendRequest(ctx, http.MethodDelete, "/fapi/v1/allOpenOrders", params, true)
	return err
}

func (b *BinanceAdapter) GetOpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := b.sendRequest(ctx, http.MethodGet, "/fapi/v1/openOrders", params, true)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		OrderID   int64  `json:"orderId"`
		Symbol    string `json:"symbol"`
		Side      string `json:"side"`
		Type      string `json:"type"`
		OrigQty   string `json:"origQty"`
		StopPrice string `json:"stopPrice"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("binance: parse open orders: %w", err)
	}

	orders := make([]domain.OpenOrder, 0, len(raw))
	for _, o := range raw {
		qty, _ := strconv.ParseFloat(o.OrigQty, 64)
		stop, _ := strconv.ParseFloat(o.StopPrice, 64)
		orders = append(orders, domain.OpenOrder{
			OrderID:   o.OrderID,
			Symbol:    o.Symbol,
			Side:      o.Side,
			Type:      o.Type,
			Qty:       qty,
			StopPrice: stop,
		})
	}
	return orders, nil
}

// --- setup ---

// InitializeFutures sets leverage and margin type for the symbol. Binance
// rejects a no-op margin change with code -4046; that one is fine.
func (b *BinanceAdapter) InitializeFutures(ctx context.Context, symbol string, leverage int, marginType string) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("leverage", strconv.Itoa(leverage))
	if _, err := b.sendRequest(ctx, http.MethodPost, "/fapi/v1/leverage", params, true); err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}

	params = url.Values{}
	params.Set("symbol", symbol)
	params.Set("marginType", strings.ToUpper(marginType))
	if _, err := b.sendRequest(ctx, http.MethodPost, "/fapi/v1/marginType", params, true); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Code == -4046 {
			return nil
		}
		return fmt.Errorf("set margin type: %w", err)
	}
	return nil
}

// --- listen key for the user-data stream ---

func (b *BinanceAdapter) CreateListenKey(ctx context.Context) (string, error) {
	body, err := b.sendRequest(ctx, http.MethodPost, "/fapi/v1/listenKey", nil, false)
	if err != nil {
		return "", err
	}
	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("binance: parse listen key: %w", err)
	}
	return resp.ListenKey, nil
}

// KeepAliveListenKey extends the listen key lease; Binance expires it after
// 60 minutes without a ping.
func (b *BinanceAdapter) KeepAliveListenKey(ctx context.Context) error {
	_, err := b.sendRequest(ctx, http.MethodPut, "/fapi/v1/listenKey", nil, false)
	return err
}
