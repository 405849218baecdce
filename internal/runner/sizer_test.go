package runner

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"spot_bot/internal/models"
)

var btcFilters = models.SymbolFilters{MinQty: 0.0001, MaxQty: 9000, StepSize: 0.0001}

func TestEntryQuantityScenario(t *testing.T) {
	qty := EntryQuantity(1000, 50000, 0.5, 0.01, btcFilters)
	assert.Equal(t, 0.0099, qty)
	assert.LessOrEqual(t, qty*50000, 1000*0.99)
}

func TestEntryQuantityNoTrade(t *testing.T) {
	assert.Zero(t, EntryQuantity(0, 50000, 0.5, 0.01, btcFilters))
	assert.Zero(t, EntryQuantity(1000, 0, 0.5, 0.01, btcFilters))
	// 1 USDT buys far less than minQty and clamping up would overspend
	assert.Zero(t, EntryQuantity(1, 50000, 0.5, 0.01, btcFilters))
}

func TestEntryQuantityMaxQty(t *testing.T) {
	f := models.SymbolFilters{MinQty: 1, MaxQty: 10, StepSize: 1}
	assert.Equal(t, 10.0, EntryQuantity(1_000_000, 1, 1, 0.01, f))
}

func TestEntryQuantityMinNotional(t *testing.T) {
	f := btcFilters
	f.MinNotional = 10
	// 0.0001 * 50000 = 5 < 10
	assert.Zero(t, EntryQuantity(6, 50000, 1, 0.01, f))
	assert.Equal(t, 0.0003, EntryQuantity(20, 50000, 1, 0.01, f))
}

func TestEntryQuantityProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	steps := []float64{1, 0.1, 0.01, 0.001, 0.0001, 0.00001}

	for i := 0; i < 2000; i++ {
		step := steps[rng.Intn(len(steps))]
		f := models.SymbolFilters{MinQty: step, MaxQty: 1e6, StepSize: step}
		balance := rng.Float64() * 100000
		price := 0.01 + rng.Float64()*60000
		fraction := 0.01 + rng.Float64()*0.99
		fee := rng.Float64() * 0.02

		qty := EntryQuantity(balance, price, fraction, fee, f)
		if qty == 0 {
			continue
		}
		assert.GreaterOrEqual(t, qty, f.MinQty)
		assert.LessOrEqual(t, qty*price, balance*0.99+1e-9, "balance=%v price=%v", balance, price)

		ratio := qty / step
		assert.True(t, math.Abs(ratio-math.Round(ratio)) <= 1e-6*math.Max(1, ratio), "qty %v not a multiple of %v", qty, step)
	}
}

func TestExitQuantity(t *testing.T) {
	assert.Equal(t, 0.0123, ExitQuantity(0.01239, btcFilters))
	assert.Zero(t, ExitQuantity(0.00005, btcFilters))
	assert.Zero(t, ExitQuantity(0, btcFilters))
	assert.Equal(t, 10.0, ExitQuantity(25, models.SymbolFilters{MinQty: 1, MaxQty: 10, StepSize: 1}))
}
