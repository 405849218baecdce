package strategy

import (
	"fmt"
	"math"

	"spot_bot/internal/models"
)

type Inputs struct {
	Trend        models.Trend
	ConfirmTrend models.Trend
	PriceChange  float64 // fraction
	RSI          float64
}

// ShouldEnter requires trend agreement, a large enough move in the trend
// direction and RSI outside the exhausted zone. Any missing leg means no entry.
func (e *Evaluator) ShouldEnter(in Inputs) bool {
	if CombineTrends(in.Trend, in.ConfirmTrend) == models.TrendUncertain {
		return false
	}
	if math.IsNaN(in.RSI) || math.IsNaN(in.PriceChange) {
		return false
	}

	switch in.Trend {
	case models.TrendBull:
		return in.PriceChange > e.cfg.MinPriceChange && in.RSI < e.cfg.RSIOverbought
	case models.TrendBear:
		return in.PriceChange < -e.cfg.MinPriceChange && in.RSI > e.cfg.RSIOversold
	default:
		return false
	}
}

func entryReason(in Inputs) string {
	return fmt.Sprintf("trend=%s change=%.3f%% rsi=%.2f", in.Trend, in.PriceChange*100, in.RSI)
}
