package helper

import (
	"math"
	"strings"
)

// NormInterval приводит интервал свечей к виду, который понимает Binance.
func NormInterval(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "60m", "1h", "h1":
		return "1h"
	case "15m", "m15":
		return "15m"
	case "5m", "m5":
		return "5m"
	default:
		return s
	}
}

// StepDecimals is the number of decimals a step size carries (0.001 -> 3).
func StepDecimals(step float64) int {
	if step <= 0 || step >= 1 {
		return 0
	}
	d := int(math.Ceil(-math.Log10(step) - 1e-9))
	if d < 0 {
		return 0
	}
	return d
}

// FloorToStep rounds qty down to a multiple of step and trims float noise.
func FloorToStep(qty, step float64) float64 {
	if step <= 0 {
		return qty
	}
	steps := math.Floor(qty/step + 1e-9)
	p := math.Pow(10, float64(StepDecimals(step)))
	return math.Round(steps*step*p) / p
}

// BaseAsset strips the quote asset suffix from a symbol: BTCUSDT -> BTC.
func BaseAsset(symbol, quote string) string {
	s := strings.ToUpper(symbol)
	q := strings.ToUpper(quote)
	if q != "" && strings.HasSuffix(s, q) && len(s) > len(q) {
		return s[:len(s)-len(q)]
	}
	return s
}
