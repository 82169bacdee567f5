package exchange

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStream() *MarketStream {
	return NewMarketStream("wss://example", "ADAUSDT", "15m", zap.NewNop())
}

func TestStreamURL(t *testing.T) {
	m := newTestStream()
	require.Equal(t,
		"wss://example/stream?streams=adausdt@kline_15m/adausdt@bookTicker",
		m.streamURL())
}

func TestDispatchClosedKline(t *testing.T) {
	m := newTestStream()
	fired := 0
	m.OnKlineClosed(func() { fired++ })

	m.dispatch([]byte(`{"stream":"adausdt@kline_15m","data":{"k":{"x":false,"c":"0.51"}}}`))
	require.Equal(t, 0, fired)

	m.dispatch([]byte(`{"stream":"adausdt@kline_15m","data":{"k":{"x":true,"c":"0.51"}}}`))
	require.Equal(t, 1, fired)
}

func TestDispatchBookTicker(t *testing.T) {
	m := newTestStream()
	var got []float64
	m.OnPriceTick(func(p float64) { got = append(got, p) })

	m.dispatch([]byte(`{"stream":"adausdt@bookTicker","data":{"b":"0.5123","a":"0.5124"}}`))
	m.dispatch([]byte(`{"stream":"adausdt@bookTicker","data":{"b":"0","a":"0.5124"}}`))
	m.dispatch([]byte(`not json`))

	require.Equal(t, []float64{0.5123}, got)
}

func TestDispatchWithoutHandlers(t *testing.T) {
	m := newTestStream()
	m.dispatch([]byte(`{"stream":"adausdt@kline_15m","data":{"k":{"x":true,"c":"0.51"}}}`))
	m.dispatch([]byte(`{"stream":"adausdt@bookTicker","data":{"b":"0.5123"}}`))
}
