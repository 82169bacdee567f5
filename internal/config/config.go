// Package config loads the bot configuration from YAML with environment
// overrides for credentials.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Binance USDT-margined futures endpoints.
const (
	mainnetREST = "https://fapi.binance.com"
	mainnetWS   = "wss://fstream.binance.com"
	testnetREST = "https://testnet.binancefuture.com"
	testnetWS   = "wss://stream.binancefuture.com"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Trading  TradingConfig  `yaml:"trading"`
	Risk     RiskConfig     `yaml:"risk"`
	Backtest BacktestConfig `yaml:"backtest"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ExchangeConfig struct {
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	Testnet      bool   `yaml:"testnet"`
	RESTEndpoint string `yaml:"rest_endpoint"`
	WSEndpoint   string `yaml:"ws_endpoint"`
	RecvWindow   int    `yaml:"recv_window"`
}

type TradingConfig struct {
	Symbol           string `yaml:"symbol"`
	Timeframe        string `yaml:"timeframe"`
	Strategy         string `yaml:"strategy"`
	Leverage         int    `yaml:"leverage"`
	MarginType       string `yaml:"margin_type"` // ISOLATED or CROSSED
	MaxOpenPositions int    `yaml:"max_open_positions"`
	RetryCount       int    `yaml:"retry_count"`
	RetryDelaySec    int    `yaml:"retry_delay_sec"`
}

type RiskConfig struct {
	RiskPerTrade          float64 `yaml:"risk_per_trade"`
	StopLossPct           float64 `yaml:"stop_loss_pct"`
	TakeProfitPct         float64 `yaml:"take_profit_pct"`
	TrailingStop          bool    `yaml:"trailing_stop"`
	TrailingStopPct       float64 `yaml:"trailing_stop_pct"`
	TrailingTakeProfit    bool    `yaml:"trailing_take_profit"`
	TrailingTakeProfitPct float64 `yaml:"trailing_take_profit_pct"`

	// MaxExposureFraction is the general margin-cost sanity cap used by
	// sizing; EntryExposureFraction is the stricter per-entry cap the
	// backtest applies on top of it.
	MaxExposureFraction   float64 `yaml:"max_exposure_fraction"`
	EntryExposureFraction float64 `yaml:"entry_exposure_fraction"`

	AutoCompound    bool    `yaml:"auto_compound"`
	ReinvestPercent float64 `yaml:"reinvest_percent"`
}

type BacktestConfig struct {
	StartDate      string  `yaml:"start_date"`
	EndDate        string  `yaml:"end_date"` // empty means now
	InitialBalance float64 `yaml:"initial_balance"`
	Commission     float64 `yaml:"commission"`
	BeforeLive     bool    `yaml:"before_live"`

	MinProfitPct        float64 `yaml:"min_profit_pct"`
	MinWinRate          float64 `yaml:"min_win_rate"`
	MinTrades           int     `yaml:"min_trades"`
	MaxMonthlyReturnPct float64 `yaml:"max_monthly_return_pct"`

	ExecutionProbability float64 `yaml:"execution_probability"`
	WarmupBars           int     `yaml:"warmup_bars"`
	Seed                 int64   `yaml:"seed"` // 0 means time-based
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	StatePath    string `yaml:"state_path"`
	DBPath       string `yaml:"db_path"`
	TradeLogPath string `yaml:"trade_log_path"`
	ReportsDir   string `yaml:"reports_dir"`
}

// Default returns the configuration used when the YAML omits a field.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			RecvWindow: 10000,
		},
		Trading: TradingConfig{
			Symbol:           "ADAUSDT",
			Timeframe:        "15m",
			Leverage:         10,
			MarginType:       "ISOLATED",
			MaxOpenPositions: 1,
			RetryCount:       3,
			RetryDelaySec:    5,
		},
		Risk: RiskConfig{
			RiskPerTrade:          0.01,
			StopLossPct:           0.025,
			TakeProfitPct:         0.08,
			TrailingStop:          true,
			TrailingStopPct:       0.015,
			TrailingTakeProfit:    true,
			TrailingTakeProfitPct: 0.04,
			MaxExposureFraction:   0.5,
			EntryExposureFraction: 0.2,
			AutoCompound:          true,
			ReinvestPercent:       0.75,
		},
		Backtest: BacktestConfig{
			InitialBalance:       50,
			Commission:           0.0004,
			BeforeLive:           true,
			MinProfitPct:         5,
			MinWinRate:           50,
			MinTrades:            5,
			MaxMonthlyReturnPct:  300,
			ExecutionProbability: 0.85,
			WarmupBars:           30,
		},
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{
			StatePath:    "bot_state.json",
			DBPath:       "trader.db",
			TradeLogPath: "trades.json",
			ReportsDir:   "reports",
		},
	}
}

// Load reads the YAML at path over the defaults and applies environment
// overrides. An empty path skips the file and uses defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.resolveEndpoints()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv pulls credentials from the environment so they never need to live
// in the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	if v := os.Getenv("BINANCE_API_TESTNET"); strings.EqualFold(v, "true") {
		c.Exchange.Testnet = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) resolveEndpoints() {
	if c.Exchange.RESTEndpoint == "" {
		if c.Exchange.Testnet {
			c.Exchange.RESTEndpoint = testnetREST
		} else {
			c.Exchange.RESTEndpoint = mainnetREST
		}
	}
	if c.Exchange.WSEndpoint == "" {
		if c.Exchange.Testnet {
			c.Exchange.WSEndpoint = testnetWS
		} else {
			c.Exchange.WSEndpoint = mainnetWS
		}
	}
}

func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("config: trading.symbol is required")
	}
	if c.Trading.Leverage < 1 || c.Trading.Leverage > 125 {
		return fmt.Errorf("config: trading.leverage %d out of range 1..125", c.Trading.Leverage)
	}
	if mt := strings.ToUpper(c.Trading.MarginType); mt != "ISOLATED" && mt != "CROSSED" {
		return fmt.Errorf("config: trading.margin_type must be ISOLATED or CROSSED, got %q", c.Trading.MarginType)
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 0.1 {
		return fmt.Errorf("config: risk.risk_per_trade %v out of range (0, 0.1]", c.Risk.RiskPerTrade)
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.StopLossPct >= 1 {
		return fmt.Errorf("config: risk.stop_loss_pct %v out of range (0, 1)", c.Risk.StopLossPct)
	}
	if c.Risk.TakeProfitPct <= 0 || c.Risk.TakeProfitPct >= 1 {
		return fmt.Errorf("config: risk.take_profit_pct %v out of range (0, 1)", c.Risk.TakeProfitPct)
	}
	if c.Risk.ReinvestPercent < 0 || c.Risk.ReinvestPercent > 1 {
		return fmt.Errorf("config: risk.reinvest_percent %v out of range [0, 1]", c.Risk.ReinvestPercent)
	}
	if c.Risk.EntryExposureFraction <= 0 || c.Risk.MaxExposureFraction <= 0 {
		return fmt.Errorf("config: exposure fractions must be positive")
	}
	if p := c.Backtest.ExecutionProbability; p <= 0 || p > 1 {
		return fmt.Errorf("config: backtest.execution_probability %v out of range (0, 1]", p)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("config: telegram enabled without bot_token or chat_id")
	}
	return nil
}

// RetryDelay returns the base retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Trading.RetryDelaySec) * time.Second
}
