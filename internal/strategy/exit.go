package strategy

import "spot_bot/internal/models"

const (
	ReasonTakeProfit = "TAKE_PROFIT"
	ReasonStopLoss   = "STOP_LOSS"
)

// ShouldExit reports whether price crossed the take-profit or stop-loss level of pos.
func ShouldExit(pos models.PositionState, price float64) (bool, string) {
	switch pos.Side {
	case models.PositionLong:
		if price >= pos.TakeProfitPrice {
			return true, ReasonTakeProfit
		}
		if price <= pos.StopLossPrice {
			return true, ReasonStopLoss
		}
	case models.PositionShort:
		if price <= pos.TakeProfitPrice {
			return true, ReasonTakeProfit
		}
		if price >= pos.StopLossPrice {
			return true, ReasonStopLoss
		}
	}
	return false, ""
}

// Trail returns a tightened stop once profit passed the trigger. The stop only
// ever moves toward price: up for LONG, down for SHORT.
func (e *Evaluator) Trail(pos models.PositionState, price float64) (float64, bool) {
	tr := e.cfg.Trailing
	if !tr.Enabled || pos.EntryPrice <= 0 || price <= 0 {
		return pos.StopLossPrice, false
	}
	dist := e.cfg.StopLoss
	if pos.StopDistance > 0 {
		dist = pos.StopDistance
	}
	dist *= tr.Factor

	switch pos.Side {
	case models.PositionLong:
		if (price-pos.EntryPrice)/pos.EntryPrice <= tr.Trigger {
			break
		}
		cand := price * (1 - dist)
		if cand > pos.StopLossPrice {
			return cand, true
		}
	case models.PositionShort:
		if (pos.EntryPrice-price)/pos.EntryPrice <= tr.Trigger {
			break
		}
		cand := price * (1 + dist)
		if cand < pos.StopLossPrice {
			return cand, true
		}
	}
	return pos.StopLossPrice, false
}
