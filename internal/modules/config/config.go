package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"spot_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	envPrefix         = "SPOT"
)

var ErrUnknownStrategy = errors.New("strategy is not configured")

// Config ...
type Config struct {
	Service struct {
		Host      string `mapstructure:"host"`
		AdminPort int    `mapstructure:"admin_port"`
	} `mapstructure:"service"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Binance struct {
		BaseURL    string        `mapstructure:"base_url"`
		WSURL      string        `mapstructure:"ws_url"`
		APIKey     string        `mapstructure:"api_key"`
		APISecret  string        `mapstructure:"api_secret"`
		Timeout    time.Duration `mapstructure:"timeout"`
		RecvWindow time.Duration `mapstructure:"recv_window"`
	} `mapstructure:"binance"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Tracing struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"tracing"`

	// Strategy: значения по умолчанию для всех символов.
	Strategy   Defaults   `mapstructure:"strategy"`
	Strategies []Strategy `mapstructure:"strategies"`
}

type Defaults struct {
	QuoteAsset      string        `mapstructure:"quote_asset"`
	PositionSize    float64       `mapstructure:"position_size"`
	StopLoss        float64       `mapstructure:"stop_loss"`
	TakeProfit      float64       `mapstructure:"take_profit"`
	EMAPeriod       int           `mapstructure:"ema_period"`
	RSIPeriod       int           `mapstructure:"rsi_period"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	RSIOverbought   float64       `mapstructure:"rsi_overbought"`
	RSIOversold     float64       `mapstructure:"rsi_oversold"`
	MinPriceChange  float64       `mapstructure:"min_price_change"`
	PriceChangeBars int           `mapstructure:"price_change_bars"`
	FeeBuffer       float64       `mapstructure:"fee_buffer"`
	TakerFee        float64       `mapstructure:"taker_fee"`
	HistorySize     int           `mapstructure:"history_size"`

	Klines struct {
		Hourly  int `mapstructure:"hourly"`
		Quarter int `mapstructure:"quarter"`
		Fast    int `mapstructure:"fast"`
	} `mapstructure:"klines"`

	Trailing struct {
		Enabled bool    `mapstructure:"enabled"`
		Trigger float64 `mapstructure:"trigger"`
		Factor  float64 `mapstructure:"factor"`
	} `mapstructure:"trailing"`

	Dynamic struct {
		Enabled     bool    `mapstructure:"enabled"`
		Bars        int     `mapstructure:"bars"`
		K           float64 `mapstructure:"k"`
		RewardRatio float64 `mapstructure:"reward_ratio"`
	} `mapstructure:"dynamic"`

	Retry struct {
		MaxRetries   int           `mapstructure:"max_retries"`
		InitialDelay time.Duration `mapstructure:"initial_delay"`
	} `mapstructure:"retry"`
}

// Strategy: символ из списка strategies; nil-поля берутся из Defaults.
type Strategy struct {
	Symbol        string         `mapstructure:"symbol"`
	Autostart     bool           `mapstructure:"autostart"`
	PositionSize  *float64       `mapstructure:"position_size"`
	StopLoss      *float64       `mapstructure:"stop_loss"`
	TakeProfit    *float64       `mapstructure:"take_profit"`
	EMAPeriod     *int           `mapstructure:"ema_period"`
	RSIPeriod     *int           `mapstructure:"rsi_period"`
	CheckInterval *time.Duration `mapstructure:"check_interval"`
}

func setDefaults(v *viper.Viper) {
	d := models.DefaultStrategyConfig("")

	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.admin_port", 8080)
	v.SetDefault("log.level", "info")

	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.ws_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("binance.api_key", "")
	v.SetDefault("binance.api_secret", "")
	v.SetDefault("binance.timeout", 10*time.Second)
	v.SetDefault("binance.recv_window", 5*time.Second)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("strategy.quote_asset", d.QuoteAsset)
	v.SetDefault("strategy.position_size", d.PositionSize)
	v.SetDefault("strategy.stop_loss", d.StopLoss)
	v.SetDefault("strategy.take_profit", d.TakeProfit)
	v.SetDefault("strategy.ema_period", d.EMAPeriod)
	v.SetDefault("strategy.rsi_period", d.RSIPeriod)
	v.SetDefault("strategy.check_interval", d.CheckInterval)
	v.SetDefault("strategy.rsi_overbought", d.RSIOverbought)
	v.SetDefault("strategy.rsi_oversold", d.RSIOversold)
	v.SetDefault("strategy.min_price_change", d.MinPriceChange)
	v.SetDefault("strategy.price_change_bars", d.PriceChangeBars)
	v.SetDefault("strategy.fee_buffer", d.FeeBuffer)
	v.SetDefault("strategy.taker_fee", d.TakerFee)
	v.SetDefault("strategy.history_size", d.HistorySize)
	v.SetDefault("strategy.klines.hourly", d.Klines.Hourly)
	v.SetDefault("strategy.klines.quarter", d.Klines.Quarter)
	v.SetDefault("strategy.klines.fast", d.Klines.Fast)
	v.SetDefault("strategy.trailing.enabled", d.Trailing.Enabled)
	v.SetDefault("strategy.trailing.trigger", d.Trailing.Trigger)
	v.SetDefault("strategy.trailing.factor", d.Trailing.Factor)
	v.SetDefault("strategy.dynamic.enabled", d.Dynamic.Enabled)
	v.SetDefault("strategy.dynamic.bars", d.Dynamic.Bars)
	v.SetDefault("strategy.dynamic.k", d.Dynamic.K)
	v.SetDefault("strategy.dynamic.reward_ratio", d.Dynamic.RewardRatio)
	v.SetDefault("strategy.retry.max_retries", d.Retry.MaxRetries)
	v.SetDefault("strategy.retry.initial_delay", d.Retry.InitialDelay)
}

// NewConfig читает configs/$CONFIG_FILE (по умолчанию values_local.yaml),
// секреты перекрываются из окружения: SPOT_BINANCE_API_KEY и т.д.
func NewConfig() (*Config, error) {
	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = "values_local.yaml"
	}
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) {
		path = "configs/" + name
	}
	return Load(path)
}

// Load reads path; an empty path means defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	for i := range cfg.Strategies {
		cfg.Strategies[i].Symbol = strings.ToUpper(strings.TrimSpace(cfg.Strategies[i].Symbol))
	}
	return &cfg, nil
}

func (c *Config) Lookup(symbol string) (Strategy, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range c.Strategies {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Strategy{}, false
}

// Symbols lists every configured symbol in file order.
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		out = append(out, s.Symbol)
	}
	return out
}

// StrategyConfig собирает конфиг запуска: дефолты -> секция strategy -> оверрайды символа.
func (c *Config) StrategyConfig(symbol string) (models.StrategyConfig, error) {
	s, ok := c.Lookup(symbol)
	if !ok {
		return models.StrategyConfig{}, errors.Wrapf(ErrUnknownStrategy, "symbol %s", symbol)
	}

	d := c.Strategy
	out := models.DefaultStrategyConfig(s.Symbol)
	out.QuoteAsset = strings.ToUpper(d.QuoteAsset)
	out.Credentials = models.Credentials{APIKey: c.Binance.APIKey, APISecret: c.Binance.APISecret}
	out.PositionSize = d.PositionSize
	out.StopLoss = d.StopLoss
	out.TakeProfit = d.TakeProfit
	out.EMAPeriod = d.EMAPeriod
	out.RSIPeriod = d.RSIPeriod
	out.CheckInterval = d.CheckInterval
	out.RSIOverbought = d.RSIOverbought
	out.RSIOversold = d.RSIOversold
	out.MinPriceChange = d.MinPriceChange
	out.PriceChangeBars = d.PriceChangeBars
	out.FeeBuffer = d.FeeBuffer
	out.TakerFee = d.TakerFee
	out.HistorySize = d.HistorySize
	out.Klines = models.KlineLimits{Hourly: d.Klines.Hourly, Quarter: d.Klines.Quarter, Fast: d.Klines.Fast}
	out.Trailing = models.TrailingConfig{Enabled: d.Trailing.Enabled, Trigger: d.Trailing.Trigger, Factor: d.Trailing.Factor}
	out.Dynamic = models.DynamicLevelsConfig{
		Enabled:     d.Dynamic.Enabled,
		Bars:        d.Dynamic.Bars,
		K:           d.Dynamic.K,
		RewardRatio: d.Dynamic.RewardRatio,
	}
	out.Retry = models.RetryConfig{MaxRetries: d.Retry.MaxRetries, InitialDelay: d.Retry.InitialDelay}

	if s.PositionSize != nil {
		out.PositionSize = *s.PositionSize
	}
	if s.StopLoss != nil {
		out.StopLoss = *s.StopLoss
	}
	if s.TakeProfit != nil {
		out.TakeProfit = *s.TakeProfit
	}
	if s.EMAPeriod != nil {
		out.EMAPeriod = *s.EMAPeriod
	}
	if s.RSIPeriod != nil {
		out.RSIPeriod = *s.RSIPeriod
	}
	if s.CheckInterval != nil {
		out.CheckInterval = *s.CheckInterval
	}

	if err := out.Validate(); err != nil {
		return models.StrategyConfig{}, err
	}
	return out, nil
}
