package models

import "time"

const (
	Interval1h  = "1h"
	Interval15m = "15m"
	Interval5m  = "5m"
)

type Kline struct {
	OpenTime    time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	CloseTime   time.Time
	QuoteVolume float64
	Trades      int64
}

// Closes extracts close prices in the order the klines were returned.
func Closes(ks []Kline) []float64 {
	out := make([]float64, len(ks))
	for i, k := range ks {
		out[i] = k.Close
	}
	return out
}

// SymbolFilters holds the lot constraints of a symbol. Read-only after fetch.
type SymbolFilters struct {
	Symbol      string
	BaseAsset   string
	QuoteAsset  string
	MinQty      float64
	MaxQty      float64
	StepSize    float64
	MinNotional float64
}

type Balance struct {
	Free   float64
	Locked float64
}

func (b Balance) Total() float64 { return b.Free + b.Locked }

type AccountSnapshot struct {
	Balances  map[string]Balance
	UpdatedAt time.Time
}

func (a AccountSnapshot) Balance(asset string) (Balance, bool) {
	b, ok := a.Balances[asset]
	return b, ok
}

func (a AccountSnapshot) Free(asset string) float64 { return a.Balances[asset].Free }

func (a AccountSnapshot) Total(asset string) float64 { return a.Balances[asset].Total() }

// Clone copies the balances map.
func (a AccountSnapshot) Clone() AccountSnapshot {
	out := AccountSnapshot{UpdatedAt: a.UpdatedAt}
	if a.Balances != nil {
		out.Balances = make(map[string]Balance, len(a.Balances))
		for k, v := range a.Balances {
			out.Balances[k] = v
		}
	}
	return out
}

type OrderRequest struct {
	Symbol        string
	Side          Side
	Quantity      float64
	ClientOrderID string
}

type OrderResult struct {
	OrderID       int64
	ClientOrderID string
	Status        string
	ExecutedQty   float64
	QuoteQty      float64
	// AvgPrice is derived from fills, 0 when the exchange returned none.
	AvgPrice float64
}
