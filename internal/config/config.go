// Package config provides configuration management for the trading simulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Decision source selection values.
const (
	SourceRules       = "rules"
	SourceLLM         = "llm"
	SourceLLMFallback = "llm_fallback" // LLM first, rules when it fails
)

// Config holds all application configuration.
type Config struct {
	Trading     TradingConfig `mapstructure:"trading"`
	Risk        RiskConfig    `mapstructure:"risk"`
	Fees        FeeConfig     `mapstructure:"fees"`
	Models      []ModelConfig `mapstructure:"models"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately

	// Dir is the directory the config was loaded from; the sqlite
	// ledger lives alongside the TOML files.
	Dir string `mapstructure:"-"`
}

// TradingConfig holds cycle and universe configuration.
type TradingConfig struct {
	IntervalMinutes   int      `mapstructure:"interval_minutes"`
	Symbols           []string `mapstructure:"symbols"`
	RestrictedSymbols []string `mapstructure:"restricted_symbols"` // 5% daily limit tier
	DecisionSource    string   `mapstructure:"decision_source"`
	SupplierTimeout   string   `mapstructure:"supplier_timeout"`
	QuoteCacheTTL     string   `mapstructure:"quote_cache_ttl"`
}

// RiskConfig holds signal thresholds and position-sizing limits.
type RiskConfig struct {
	PullbackTolerance float64 `mapstructure:"pullback_tolerance"`
	RSIBuyLow         float64 `mapstructure:"rsi_buy_low"`
	RSINeutralLow     float64 `mapstructure:"rsi_neutral_low"`
	RSINeutralHigh    float64 `mapstructure:"rsi_neutral_high"`
	RSISellHigh       float64 `mapstructure:"rsi_sell_high"`
	PositionLimitPct  float64 `mapstructure:"position_limit_pct"`
	StopLossPct       float64 `mapstructure:"stop_loss_pct"`

	// Advisory take-profit multipliers and stop offsets per buy class.
	TakeProfitBreakout     float64 `mapstructure:"take_profit_breakout"`
	TakeProfitPullback     float64 `mapstructure:"take_profit_pullback"`
	TakeProfitContinuation float64 `mapstructure:"take_profit_continuation"`
	StopOffsetBreakout     float64 `mapstructure:"stop_offset_breakout"`
	StopOffsetPullback     float64 `mapstructure:"stop_offset_pullback"`
	StopOffsetContinuation float64 `mapstructure:"stop_offset_continuation"`
}

// FeeConfig holds the A-share fee schedule and exchange limits.
type FeeConfig struct {
	CommissionRate     float64 `mapstructure:"commission_rate"`
	CommissionFloor    float64 `mapstructure:"commission_floor"`
	LevyRate           float64 `mapstructure:"levy_rate"` // stamp duty, sells only
	LotSize            int     `mapstructure:"lot_size"`
	NormalLimitPct     float64 `mapstructure:"normal_limit_pct"`
	RestrictedLimitPct float64 `mapstructure:"restricted_limit_pct"`
}

// ModelConfig describes one trading persona with its own capital and
// ledger rows.
type ModelConfig struct {
	Name           string  `mapstructure:"name"`
	InitialCapital float64 `mapstructure:"initial_capital"`
	DecisionSource string  `mapstructure:"decision_source"` // overrides trading.decision_source
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds credentials for the OpenAI-compatible
// decision endpoint.
type OpenAICredentials struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// DefaultSymbols is the default A-share symbol universe.
var DefaultSymbols = []string{"600519", "000858", "601318", "600036", "000333", "300750"}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ashare-trader"
	}
	return filepath.Join(home, ".config", "ashare-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			// Proceed on defaults; the template matches them.
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading.interval_minutes", 5)
	v.SetDefault("trading.symbols", DefaultSymbols)
	v.SetDefault("trading.restricted_symbols", []string{})
	v.SetDefault("trading.decision_source", SourceRules)
	v.SetDefault("trading.supplier_timeout", "5s")
	v.SetDefault("trading.quote_cache_ttl", "5s")

	v.SetDefault("risk.pullback_tolerance", 0.01)
	v.SetDefault("risk.rsi_buy_low", 30.0)
	v.SetDefault("risk.rsi_neutral_low", 45.0)
	v.SetDefault("risk.rsi_neutral_high", 60.0)
	v.SetDefault("risk.rsi_sell_high", 70.0)
	v.SetDefault("risk.position_limit_pct", 0.30)
	v.SetDefault("risk.stop_loss_pct", 0.05)
	v.SetDefault("risk.take_profit_breakout", 1.10)
	v.SetDefault("risk.take_profit_pullback", 1.08)
	v.SetDefault("risk.take_profit_continuation", 1.06)
	v.SetDefault("risk.stop_offset_breakout", 0.05)
	v.SetDefault("risk.stop_offset_pullback", 0.04)
	v.SetDefault("risk.stop_offset_continuation", 0.03)

	v.SetDefault("fees.commission_rate", 0.0003)
	v.SetDefault("fees.commission_floor", 5.0)
	v.SetDefault("fees.levy_rate", 0.001)
	v.SetDefault("fees.lot_size", 100)
	v.SetDefault("fees.normal_limit_pct", 0.10)
	v.SetDefault("fees.restricted_limit_pct", 0.05)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Credentials.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ASHARE_DECISION_SOURCE"); v != "" {
		cfg.Trading.DecisionSource = v
	}
	if v := os.Getenv("ASHARE_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Trading.IntervalMinutes = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Trading.DecisionSource {
	case SourceRules, SourceLLM, SourceLLMFallback:
	default:
		return fmt.Errorf("invalid decision_source: %s", c.Trading.DecisionSource)
	}

	if c.Trading.IntervalMinutes <= 0 {
		return fmt.Errorf("interval_minutes must be positive")
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}

	if c.Risk.PositionLimitPct <= 0 || c.Risk.PositionLimitPct > 1 {
		return fmt.Errorf("position_limit_pct must be in (0, 1]")
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be in (0, 1)")
	}
	if c.Risk.RSINeutralLow > c.Risk.RSINeutralHigh {
		return fmt.Errorf("rsi_neutral_low must not exceed rsi_neutral_high")
	}

	if c.Fees.LotSize <= 0 {
		return fmt.Errorf("lot_size must be positive")
	}
	if c.Fees.CommissionRate < 0 || c.Fees.LevyRate < 0 {
		return fmt.Errorf("fee rates must be non-negative")
	}

	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d]: name is required", i)
		}
		if m.InitialCapital <= 0 {
			return fmt.Errorf("models[%d]: initial_capital must be positive", i)
		}
		if m.DecisionSource != "" {
			switch m.DecisionSource {
			case SourceRules, SourceLLM, SourceLLMFallback:
			default:
				return fmt.Errorf("models[%d]: invalid decision_source: %s", i, m.DecisionSource)
			}
		}
	}

	return nil
}

// Interval returns the cycle interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Trading.IntervalMinutes) * time.Minute
}

// SupplierTimeout returns the per-provider fetch timeout.
func (c *Config) SupplierTimeout() time.Duration {
	d, err := time.ParseDuration(c.Trading.SupplierTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// QuoteCacheTTL returns the shared quote cache lifetime.
func (c *Config) QuoteCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Trading.QuoteCacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// SourceFor returns the decision source for one model, falling back to
// the trading-level setting.
func (c *Config) SourceFor(m ModelConfig) string {
	if m.DecisionSource != "" {
		return m.DecisionSource
	}
	return c.Trading.DecisionSource
}

// IsRestricted reports whether a symbol sits in the 5% daily-limit tier.
func (c *Config) IsRestricted(symbol string) bool {
	for _, s := range c.Trading.RestrictedSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}
