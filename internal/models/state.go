package models

import "time"

type Indicators struct {
	CurrentPrice float64 `json:"currentPrice" yaml:"current_price"`
	EMA          float64 `json:"ema" yaml:"ema"`
	FastEMA      float64 `json:"fastEma" yaml:"fast_ema"`
	RSI          float64 `json:"rsi" yaml:"rsi"`
	PriceChange  float64 `json:"priceChange" yaml:"price_change"` // percent
}

type PositionView struct {
	Side            PositionSide `json:"side" yaml:"side"`
	EntryPrice      float64      `json:"entryPrice" yaml:"entry_price"`
	StopLossPrice   float64      `json:"stopLossPrice" yaml:"stop_loss_price"`
	TakeProfitPrice float64      `json:"takeProfitPrice" yaml:"take_profit_price"`
	Quantity        float64      `json:"quantity" yaml:"quantity"`
	UnrealizedPnl   float64      `json:"unrealizedPnl" yaml:"unrealized_pnl"`
}

// StrategyState is the caller-facing snapshot of one strategy. It never aliases runner memory.
type StrategyState struct {
	Symbol         string        `json:"symbol" yaml:"symbol"`
	Running        bool          `json:"isRunning" yaml:"running"`
	Position       PositionView  `json:"position" yaml:"position"`
	Indicators     Indicators    `json:"indicators" yaml:"indicators"`
	Trend          Trend         `json:"marketTrend" yaml:"trend"`
	LastSignal     Signal        `json:"lastSignal" yaml:"last_signal"`
	CheckCount     int64         `json:"checkCount" yaml:"check_count"`
	LastCheck      time.Time     `json:"lastCheck" yaml:"last_check"`
	AccountBalance float64       `json:"accountBalance" yaml:"account_balance"`
	PositionValue  float64       `json:"positionValue" yaml:"position_value"`
	RealizedPnl    float64       `json:"realizedPnl" yaml:"realized_pnl"`
	LastError      string        `json:"lastError,omitempty" yaml:"last_error,omitempty"`
	Orders         []OrderRecord `json:"orderHistory" yaml:"orders"`
}

func ViewOf(p PositionState) PositionView {
	return PositionView{
		Side:            p.Side,
		EntryPrice:      p.EntryPrice,
		StopLossPrice:   p.StopLossPrice,
		TakeProfitPrice: p.TakeProfitPrice,
		Quantity:        p.Quantity,
		UnrealizedPnl:   p.UnrealizedPnl,
	}
}
