package indicators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_SeedAndSmoothing(t *testing.T) {
	out, err := EMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// seed = (1+2+3)/3, k = 0.5
	assert.InDelta(t, 2.0, out[0], 1e-12)
	assert.InDelta(t, 3.0, out[1], 1e-12)
	assert.InDelta(t, 4.0, out[2], 1e-12)
}

func TestEMA_InsufficientData(t *testing.T) {
	_, err := EMA([]float64{1, 2}, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = EMA([]float64{1, 2}, 0)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestEMA_LengthAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		period := 1 + rng.Intn(20)
		length := period + rng.Intn(80)
		closes := make([]float64, length)
		price := 100.0
		for i := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.04
			closes[i] = price
		}

		out, err := EMA(closes, period)
		require.NoError(t, err)
		require.Len(t, out, length-period+1)

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, c := range closes {
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		for _, v := range out {
			assert.GreaterOrEqual(t, v, lo-1e-9)
			assert.LessOrEqual(t, v, hi+1e-9)
		}
	}
}

func TestLastEMA(t *testing.T) {
	v, err := LastEMA([]float64{10, 10, 10, 10}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-12)
}
