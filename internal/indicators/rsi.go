package indicators

import "github.com/pkg/errors"

// RSI returns the Wilder-smoothed relative strength index series.
// The first value uses the plain average of the first period deltas;
// len(result) == len(closes)-period.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(closes) < period+1 {
		return nil, errors.Wrapf(ErrInsufficientData, "rsi(%d) needs %d closes, got %d", period, period+1, len(closes))
	}

	n := float64(period)
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		g, l := split(closes[i] - closes[i-1])
		avgGain += g
		avgLoss += l
	}
	avgGain /= n
	avgLoss /= n

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		g, l := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(n-1) + g) / n
		avgLoss = (avgLoss*(n-1) + l) / n
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

// LastRSI is the latest RSI value.
func LastRSI(closes []float64, period int) (float64, error) {
	s, err := RSI(closes, period)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
