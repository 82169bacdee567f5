package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/futures-trader/internal/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "ADAUSDT", cfg.Trading.Symbol)
	assert.Equal(t, "15m", cfg.Trading.Timeframe)
	assert.Equal(t, 10, cfg.Trading.Leverage)
	assert.Equal(t, 0.01, cfg.Risk.RiskPerTrade)
	assert.Equal(t, 0.025, cfg.Risk.StopLossPct)
	assert.Equal(t, 0.75, cfg.Risk.ReinvestPercent)
	assert.Equal(t, 0.0004, cfg.Backtest.Commission)
	assert.Equal(t, "https://fapi.binance.com", cfg.Exchange.RESTEndpoint)
	assert.Equal(t, "wss://fstream.binance.com", cfg.Exchange.WSEndpoint)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trading:
  symbol: BTCUSDT
  timeframe: 5m
  leverage: 20
risk:
  risk_per_trade: 0.02
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Trading.Symbol)
	assert.Equal(t, "5m", cfg.Trading.Timeframe)
	assert.Equal(t, 20, cfg.Trading.Leverage)
	assert.Equal(t, 0.02, cfg.Risk.RiskPerTrade)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.025, cfg.Risk.StopLossPct)
	assert.Equal(t, 3, cfg.Trading.RetryCount)
}

func TestLoad_TestnetEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exchange:
  testnet: true
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://testnet.binancefuture.com", cfg.Exchange.RESTEndpoint)
	assert.Equal(t, "wss://stream.binancefuture.com", cfg.Exchange.WSEndpoint)
}

func TestLoad_EnvOverridesCredentials(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "env-key")
	t.Setenv("BINANCE_API_SECRET", "env-secret")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Exchange.APIKey)
	assert.Equal(t, "env-secret", cfg.Exchange.APISecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]func(*config.Config){
		"empty symbol":       func(c *config.Config) { c.Trading.Symbol = "" },
		"leverage too high":  func(c *config.Config) { c.Trading.Leverage = 200 },
		"bad margin type":    func(c *config.Config) { c.Trading.MarginType = "HOPEFUL" },
		"zero risk":          func(c *config.Config) { c.Risk.RiskPerTrade = 0 },
		"stop loss over 1":   func(c *config.Config) { c.Risk.StopLossPct = 1.5 },
		"reinvest over 1":    func(c *config.Config) { c.Risk.ReinvestPercent = 1.2 },
		"exec prob over 1":   func(c *config.Config) { c.Backtest.ExecutionProbability = 1.5 },
		"telegram half-done": func(c *config.Config) { c.Telegram.Enabled = true },
	}

	for name, mutate := range cases {
		cfg := config.Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
