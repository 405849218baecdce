package runner

import (
	"spot_bot/internal/helper"
	"spot_bot/internal/models"
)

// notionalCap is the share of the balance a single entry may never exceed.
const notionalCap = 0.99

// EntryQuantity converts a balance share into an order quantity that passes the
// lot filters. 0 means "no trade".
func EntryQuantity(balance, price, fraction, feeBuffer float64, f models.SymbolFilters) float64 {
	if balance <= 0 || price <= 0 || fraction <= 0 {
		return 0
	}

	raw := balance * fraction * (1 - feeBuffer)
	qty := raw / price
	if f.MaxQty > 0 && qty > f.MaxQty {
		qty = f.MaxQty
	}
	if qty < f.MinQty {
		qty = f.MinQty
	}
	qty = helper.FloorToStep(qty, f.StepSize)

	limit := balance * notionalCap
	if qty*price > limit {
		qty = helper.FloorToStep(limit/price, f.StepSize)
		// FloorToStep tolerates 1e-9 of float noise, which may land one step over
		if qty*price > limit && f.StepSize > 0 {
			qty = helper.FloorToStep(qty-f.StepSize, f.StepSize)
		}
	}

	if qty <= 0 || qty < f.MinQty {
		return 0
	}
	if f.MinNotional > 0 && qty*price < f.MinNotional {
		return 0
	}
	return qty
}

// ExitQuantity floors the free base balance to the step. 0 means "nothing to close".
func ExitQuantity(free float64, f models.SymbolFilters) float64 {
	if free <= 0 {
		return 0
	}
	qty := free
	if f.MaxQty > 0 && qty > f.MaxQty {
		qty = f.MaxQty
	}
	qty = helper.FloorToStep(qty, f.StepSize)
	if qty <= 0 || qty < f.MinQty {
		return 0
	}
	return qty
}
