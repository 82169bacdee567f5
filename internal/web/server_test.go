package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/usecase"
	"github.com/vitos/futures-trader/internal/web"
)

type statusStub struct {
	snap usecase.StatusSnapshot
}

func (s *statusStub) Snapshot() usecase.StatusSnapshot { return s.snap }

type repoStub struct {
	trades []*domain.Trade
	err    error
}

func (r *repoStub) SaveTrade(_ context.Context, _ *domain.Trade) error { return nil }
func (r *repoStub) SaveEquity(_ context.Context, _ domain.EquityPoint) error {
	return nil
}
func (r *repoStub) ListTrades(_ context.Context, limit int) ([]*domain.Trade, error) {
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.trades) {
		return r.trades[:limit], nil
	}
	return r.trades, nil
}

func newTestServer(t *testing.T, status *statusStub, repo *repoStub) *httptest.Server {
	t.Helper()
	srv := web.NewServer(0, status, repo, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestStatusEndpoint(t *testing.T) {
	status := &statusStub{snap: usecase.StatusSnapshot{
		Symbol:         "ADAUSDT",
		Timeframe:      "15m",
		Strategy:       "stoch_macd",
		Running:        true,
		InPosition:     true,
		Side:           domain.SideLong,
		Size:           40,
		TotalTrades:    6,
		WinningTrades:  4,
		WinRate:        66.67,
		CurrentBalance: 1042.5,
	}}
	ts := newTestServer(t, status, &repoStub{})

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got usecase.StatusSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "ADAUSDT", got.Symbol)
	require.True(t, got.InPosition)
	require.Equal(t, domain.SideLong, got.Side)
	require.Equal(t, 1042.5, got.CurrentBalance)
}

func TestTradesEndpoint(t *testing.T) {
	repo := &repoStub{trades: []*domain.Trade{
		{ID: "01H0000000000000000000001", Symbol: "ADAUSDT", RealizedPnL: 12.5},
		{ID: "01H0000000000000000000002", Symbol: "ADAUSDT", RealizedPnL: -4.1},
	}}
	ts := newTestServer(t, &statusStub{}, repo)

	resp, err := http.Get(ts.URL + "/trades?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []*domain.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	require.Equal(t, 12.5, got[0].RealizedPnL)
}

func TestTradesEndpoint_BadLimit(t *testing.T) {
	ts := newTestServer(t, &statusStub{}, &repoStub{})

	resp, err := http.Get(ts.URL + "/trades?limit=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	status := &statusStub{snap: usecase.StatusSnapshot{
		TotalTrades:    9,
		CurrentBalance: 987.6,
		InPosition:     true,
		Size:           12,
	}}
	ts := newTestServer(t, status, &repoStub{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	require.Contains(t, body, "trader_trades_total 9")
	require.Contains(t, body, "trader_balance_usdt 987.6")
	require.Contains(t, body, "trader_position_open 1")
}
