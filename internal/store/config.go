package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string `yaml:"mode"` // DRY_RUN or LIVE
	PollSeconds int    `yaml:"poll_seconds"`

	// WalletAddress comes from the WALLET_ADDRESS env var, never from yaml.
	WalletAddress string `yaml:"-"`

	RPC struct {
		Providers         []string `yaml:"providers"`
		MaxRetries        int      `yaml:"max_retries"`
		RetryDelaySeconds int      `yaml:"retry_delay_seconds"`
		ResetMinutes      int      `yaml:"reset_minutes"`
		TimeoutSeconds    int      `yaml:"timeout_seconds"`
	} `yaml:"rpc"`

	Pair struct {
		Name         string `yaml:"name"`
		PoolAddress  string `yaml:"pool_address"`
		BaseAddress  string `yaml:"base_address"`
		TokenAddress string `yaml:"token_address"`
	} `yaml:"pair"`

	History struct {
		Hours          int     `yaml:"hours"`
		BlocksPerHour  int     `yaml:"blocks_per_hour"`
		MinRealSamples int     `yaml:"min_real_samples"`
		BaselineVolume float64 `yaml:"baseline_volume"`
	} `yaml:"history"`

	Indicators struct {
		ShortSMA      int     `yaml:"short_sma"`
		LongSMA       int     `yaml:"long_sma"`
		RSIPeriod     int     `yaml:"rsi_period"`
		RSIOversold   float64 `yaml:"rsi_oversold"`
		RSIOverbought float64 `yaml:"rsi_overbought"`
		VolumeMA      int     `yaml:"volume_ma"`
	} `yaml:"indicators"`

	Trading struct {
		Enabled           bool    `yaml:"enabled"`
		TradePercentage   float64 `yaml:"trade_percentage"`
		SlippageTolerance float64 `yaml:"slippage_tolerance"`
		InitialBalance    float64 `yaml:"initial_balance"` // DRY_RUN paper balance
	} `yaml:"trading"`

	Risk struct {
		MaxTradeSize    float64 `yaml:"max_trade_size"`
		MaxDailyTrades  int     `yaml:"max_daily_trades"`
		MaxDailyVolume  float64 `yaml:"max_daily_volume"`
		MaxGasPriceGwei float64 `yaml:"max_gas_price_gwei"`
	} `yaml:"risk"`

	EmergencyStop struct {
		StopLoss          float64 `yaml:"stop_loss"`
		RecoveryEnabled   bool    `yaml:"recovery_enabled"`
		RecoveryThreshold float64 `yaml:"recovery_threshold"`
		RecoveryWaitHours float64 `yaml:"recovery_wait_hours"`
	} `yaml:"emergency_stop"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.RPC.Providers) == 0 {
		return errors.New("rpc.providers cannot be empty")
	}
	if c.Pair.PoolAddress == "" {
		return errors.New("pair.pool_address cannot be empty")
	}
	if c.Indicators.ShortSMA >= c.Indicators.LongSMA {
		return fmt.Errorf("indicators.short_sma (%d) must be below long_sma (%d)",
			c.Indicators.ShortSMA, c.Indicators.LongSMA)
	}
	if c.Indicators.RSIOversold >= c.Indicators.RSIOverbought {
		return fmt.Errorf("indicators.rsi_oversold (%.0f) must be below rsi_overbought (%.0f)",
			c.Indicators.RSIOversold, c.Indicators.RSIOverbought)
	}
	if c.Trading.TradePercentage <= 0 || c.Trading.TradePercentage > 1 {
		return fmt.Errorf("trading.trade_percentage must be in (0,1], got %.2f", c.Trading.TradePercentage)
	}
	if c.EmergencyStop.StopLoss <= 0 || c.EmergencyStop.StopLoss >= 1 {
		return fmt.Errorf("emergency_stop.stop_loss must be in (0,1), got %.2f", c.EmergencyStop.StopLoss)
	}
	if c.Risk.MaxTradeSize <= 0 {
		return fmt.Errorf("risk.max_trade_size must be positive, got %f", c.Risk.MaxTradeSize)
	}
	if c.Mode == "LIVE" && c.WalletAddress == "" {
		return errors.New("WALLET_ADDRESS must be set in LIVE mode")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	applyEnv(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 3
	}
	if c.RPC.MaxRetries == 0 {
		c.RPC.MaxRetries = 3
	}
	if c.RPC.RetryDelaySeconds == 0 {
		c.RPC.RetryDelaySeconds = 1
	}
	if c.RPC.ResetMinutes == 0 {
		c.RPC.ResetMinutes = 5
	}
	if c.RPC.TimeoutSeconds == 0 {
		c.RPC.TimeoutSeconds = 10
	}
	if c.Pair.Name == "" {
		c.Pair.Name = "PEPE/WETH"
	}
	if c.History.Hours == 0 {
		c.History.Hours = 24
	}
	if c.History.BlocksPerHour == 0 {
		c.History.BlocksPerHour = 240
	}
	if c.History.MinRealSamples == 0 {
		c.History.MinRealSamples = 5
	}
	if c.History.BaselineVolume == 0 {
		c.History.BaselineVolume = 500000
	}
	if c.Indicators.ShortSMA == 0 {
		c.Indicators.ShortSMA = 3
	}
	if c.Indicators.LongSMA == 0 {
		c.Indicators.LongSMA = 8
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 5
	}
	if c.Indicators.RSIOversold == 0 {
		c.Indicators.RSIOversold = 35
	}
	if c.Indicators.RSIOverbought == 0 {
		c.Indicators.RSIOverbought = 65
	}
	if c.Indicators.VolumeMA == 0 {
		c.Indicators.VolumeMA = 5
	}
	if c.Trading.TradePercentage == 0 {
		c.Trading.TradePercentage = 0.15
	}
	if c.Trading.SlippageTolerance == 0 {
		c.Trading.SlippageTolerance = 0.02
	}
	if c.Trading.InitialBalance == 0 {
		c.Trading.InitialBalance = 1.0
	}
	if c.Risk.MaxTradeSize == 0 {
		c.Risk.MaxTradeSize = 0.01
	}
	if c.Risk.MaxDailyTrades == 0 {
		c.Risk.MaxDailyTrades = 50
	}
	if c.Risk.MaxDailyVolume == 0 {
		c.Risk.MaxDailyVolume = 10.0
	}
	if c.Risk.MaxGasPriceGwei == 0 {
		c.Risk.MaxGasPriceGwei = 200
	}
	if c.EmergencyStop.StopLoss == 0 {
		c.EmergencyStop.StopLoss = 0.20
	}
	if c.EmergencyStop.RecoveryThreshold == 0 {
		c.EmergencyStop.RecoveryThreshold = 0.05
	}
	if c.EmergencyStop.RecoveryWaitHours == 0 {
		c.EmergencyStop.RecoveryWaitHours = 2
	}
}

// applyEnv overlays secrets and operator switches that never belong in yaml.
func applyEnv(c *Config) {
	if v := os.Getenv("WEB3_PROVIDER_URL"); v != "" {
		c.RPC.Providers = append([]string{v}, c.RPC.Providers...)
	}
	c.WalletAddress = os.Getenv("WALLET_ADDRESS")
	if v := os.Getenv("LIVE_TRADING_ENABLED"); v != "" {
		c.Trading.Enabled = strings.EqualFold(v, "true")
	}
}

// MinSamples is the number of samples every indicator needs before the
// decision engine may act. 26 is the MACD slow period.
func (c *Config) MinSamples() int {
	min := 26
	for _, n := range []int{c.Indicators.ShortSMA, c.Indicators.LongSMA, c.Indicators.RSIPeriod} {
		if n > min {
			min = n
		}
	}
	return min
}
