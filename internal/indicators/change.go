package indicators

import (
	"math"

	"github.com/pkg/errors"
)

// PriceChange is the fractional move from the close bars ago to the last close.
func PriceChange(closes []float64, bars int) (float64, error) {
	if bars <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(closes) < bars+1 {
		return 0, errors.Wrapf(ErrInsufficientData, "price change over %d bars needs %d closes, got %d", bars, bars+1, len(closes))
	}
	last := closes[len(closes)-1]
	ref := closes[len(closes)-1-bars]
	if ref == 0 {
		return 0, nil
	}
	return (last - ref) / ref, nil
}

// Volatility is the mean absolute single-bar return over the last bars returns.
func Volatility(closes []float64, bars int) float64 {
	if len(closes) < 2 || bars <= 0 {
		return 0
	}
	if bars > len(closes)-1 {
		bars = len(closes) - 1
	}
	total := 0.0
	for i := len(closes) - 1; i > len(closes)-1-bars; i-- {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		total += math.Abs(closes[i]-prev) / prev
	}
	return total / float64(bars)
}
