package models

import (
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid strategy config")

// Side is the order direction as the exchange spells it.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the side that closes a position opened with s.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideNone
	}
}

type Trend string

const (
	TrendBull      Trend = "BULL"
	TrendBear      Trend = "BEAR"
	TrendUncertain Trend = "UNCERTAIN"
)

// Signal is the last decision that produced an order.
type Signal string

const (
	SignalNone  Signal = ""
	SignalEntry Signal = "ENTRY_SIGNAL"
	SignalExit  Signal = "EXIT_SIGNAL"
)

// Credentials is an opaque handle passed through to the gateway.
type Credentials struct {
	APIKey    string
	APISecret string
}

type TrailingConfig struct {
	Enabled bool
	// Trigger is the unrealized profit fraction after which the stop starts to follow price.
	Trigger float64
	// Factor scales StopLoss for the distance between price and the trailed stop.
	Factor float64
}

type DynamicLevelsConfig struct {
	Enabled     bool
	Bars        int
	K           float64
	RewardRatio float64
}

type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
}

type KlineLimits struct {
	Hourly  int
	Quarter int
	Fast    int
}

// StrategyConfig is fixed for the lifetime of one run.
type StrategyConfig struct {
	Symbol      string
	QuoteAsset  string
	Credentials Credentials

	PositionSize float64 // fraction of quote balance, (0, 1]
	StopLoss     float64 // fraction of entry price
	TakeProfit   float64 // fraction of entry price

	EMAPeriod     int
	RSIPeriod     int
	CheckInterval time.Duration

	RSIOverbought   float64
	RSIOversold     float64
	MinPriceChange  float64 // fraction, e.g. 0.003
	PriceChangeBars int

	FeeBuffer   float64
	TakerFee    float64
	HistorySize int

	Klines   KlineLimits
	Trailing TrailingConfig
	Dynamic  DynamicLevelsConfig
	Retry    RetryConfig
}

func DefaultStrategyConfig(symbol string) StrategyConfig {
	return StrategyConfig{
		Symbol:          symbol,
		QuoteAsset:      "USDT",
		PositionSize:    0.1,
		StopLoss:        0.02,
		TakeProfit:      0.04,
		EMAPeriod:       20,
		RSIPeriod:       14,
		CheckInterval:   time.Minute,
		RSIOverbought:   65,
		RSIOversold:     35,
		MinPriceChange:  0.003,
		PriceChangeBars: 5,
		FeeBuffer:       0.01,
		TakerFee:        0.001,
		HistorySize:     100,
		Klines: KlineLimits{
			Hourly:  100,
			Quarter: 50,
			Fast:    30,
		},
		Trailing: TrailingConfig{
			Enabled: true,
			Trigger: 0.02,
			Factor:  0.5,
		},
		Dynamic: DynamicLevelsConfig{
			Enabled:     false,
			Bars:        10,
			K:           1.5,
			RewardRatio: 1.75,
		},
		Retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: time.Second,
		},
	}
}

// FastEMAPeriod is the EMA period used on the 15m confirmation timeframe.
func (c StrategyConfig) FastEMAPeriod() int {
	p := (c.EMAPeriod + 1) / 2
	if p < 1 {
		p = 1
	}
	return p
}

func (c StrategyConfig) Validate() error {
	switch {
	case c.Symbol == "":
		return errors.Wrap(ErrInvalidConfig, "symbol is empty")
	case c.PositionSize <= 0 || c.PositionSize > 1:
		return errors.Wrapf(ErrInvalidConfig, "position size %.4f out of (0, 1]", c.PositionSize)
	case c.StopLoss <= 0:
		return errors.Wrapf(ErrInvalidConfig, "stop loss %.4f must be > 0", c.StopLoss)
	case c.TakeProfit <= c.StopLoss:
		return errors.Wrapf(ErrInvalidConfig, "take profit %.4f must be > stop loss %.4f", c.TakeProfit, c.StopLoss)
	case c.EMAPeriod <= 0 || c.RSIPeriod <= 0:
		return errors.Wrap(ErrInvalidConfig, "indicator periods must be > 0")
	case c.CheckInterval <= 0:
		return errors.Wrap(ErrInvalidConfig, "check interval must be > 0")
	case c.RSIOversold >= c.RSIOverbought:
		return errors.Wrapf(ErrInvalidConfig, "rsi oversold %.1f must be < overbought %.1f", c.RSIOversold, c.RSIOverbought)
	case c.FeeBuffer < 0 || c.FeeBuffer >= 1:
		return errors.Wrapf(ErrInvalidConfig, "fee buffer %.4f out of [0, 1)", c.FeeBuffer)
	case c.PriceChangeBars <= 0:
		return errors.Wrap(ErrInvalidConfig, "price change bars must be > 0")
	}
	// the fast timeframe must hold enough bars for RSI and price change
	if c.Klines.Fast < c.RSIPeriod+1 || c.Klines.Fast <= c.PriceChangeBars {
		return errors.Wrapf(ErrInvalidConfig, "fast kline limit %d too small", c.Klines.Fast)
	}
	if c.Klines.Hourly < c.EMAPeriod || c.Klines.Quarter < c.FastEMAPeriod() {
		return errors.Wrap(ErrInvalidConfig, "kline limits shorter than ema periods")
	}
	return nil
}
