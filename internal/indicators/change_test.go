package indicators

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceChange(t *testing.T) {
	v, err := PriceChange([]float64{100, 101, 102, 100.5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.005, v, 1e-12)

	_, err = PriceChange([]float64{100, 101}, 3)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestVolatility(t *testing.T) {
	// returns: +1%, -1%
	v := Volatility([]float64{100, 101, 99.99}, 10)
	assert.InDelta(t, 0.01, v, 1e-9)

	assert.Equal(t, 0.0, Volatility([]float64{100}, 10))
	assert.Equal(t, 0.0, Volatility(nil, 10))
}
