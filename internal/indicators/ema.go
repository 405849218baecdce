package indicators

import "github.com/pkg/errors"

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidPeriod    = errors.New("period must be positive")
)

// EMA returns the exponential moving average of closes, seeded with the simple
// average of the first period values. len(result) == len(closes)-period+1.
func EMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(closes) < period {
		return nil, errors.Wrapf(ErrInsufficientData, "ema(%d) needs %d closes, got %d", period, period, len(closes))
	}

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(closes)-period+1)

	sum := 0.0
	for _, c := range closes[:period] {
		sum += c
	}
	prev := sum / float64(period)
	out = append(out, prev)

	for _, c := range closes[period:] {
		prev = (c-prev)*k + prev
		out = append(out, prev)
	}
	return out, nil
}

// LastEMA is the final value of EMA(closes, period).
func LastEMA(closes []float64, period int) (float64, error) {
	s, err := EMA(closes, period)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}
