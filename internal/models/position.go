package models

import "time"

type PositionSide string

const (
	PositionNone  PositionSide = "NONE"
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// EntrySide maps a trend to the position it opens. UNCERTAIN opens nothing.
func EntrySide(t Trend) PositionSide {
	switch t {
	case TrendBull:
		return PositionLong
	case TrendBear:
		return PositionShort
	default:
		return PositionNone
	}
}

// OrderSide is the side of the order that opens p.
func (p PositionSide) OrderSide() Side {
	switch p {
	case PositionLong:
		return SideBuy
	case PositionShort:
		return SideSell
	default:
		return SideNone
	}
}

type PositionState struct {
	Side            PositionSide
	EntryPrice      float64
	StopLossPrice   float64
	TakeProfitPrice float64
	Quantity        float64
	UnrealizedPnl   float64 // percent
	// StopDistance is the stop-loss fraction the position opened with.
	StopDistance float64
	OpenedAt        time.Time
}

func FlatPosition() PositionState {
	return PositionState{Side: PositionNone}
}

func (p PositionState) Open() bool {
	return p.Side == PositionLong || p.Side == PositionShort
}

// PnlPct is the percentage return of the position at price.
func (p PositionState) PnlPct(price float64) float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	switch p.Side {
	case PositionLong:
		return (price - p.EntryPrice) / p.EntryPrice * 100
	case PositionShort:
		return (p.EntryPrice - price) / p.EntryPrice * 100
	default:
		return 0
	}
}
