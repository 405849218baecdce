package strategy

import "spot_bot/internal/models"

// ClassifyTrend compares the latest close of a timeframe with its EMA.
func ClassifyTrend(close, ema float64) models.Trend {
	if close > ema {
		return models.TrendBull
	}
	return models.TrendBear
}

// CombineTrends keeps the higher timeframe trend only when the faster one agrees.
func CombineTrends(primary, confirm models.Trend) models.Trend {
	if primary == confirm && primary != models.TrendUncertain {
		return primary
	}
	return models.TrendUncertain
}
