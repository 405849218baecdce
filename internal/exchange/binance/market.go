package binance

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"spot_bot/internal/helper"
	"spot_bot/internal/models"
)

// Klines fetches the most recent candles, oldest first.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Kline, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("interval", helper.NormInterval(interval))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw [][]any
	if err := c.public(ctx, http.MethodGet, "/api/v3/klines", params, &raw); err != nil {
		return nil, errors.Wrapf(err, "klines %s %s", symbol, interval)
	}

	out := make([]models.Kline, 0, len(raw))
	for _, row := range raw {
		// [openTime, open, high, low, close, volume, closeTime, quoteVolume, trades, ...]
		if len(row) < 7 {
			continue
		}
		k := models.Kline{
			OpenTime:  time.UnixMilli(parseInt(row[0])),
			Open:      parseFloat(row[1]),
			High:      parseFloat(row[2]),
			Low:       parseFloat(row[3]),
			Close:     parseFloat(row[4]),
			Volume:    parseFloat(row[5]),
			CloseTime: time.UnixMilli(parseInt(row[6])),
		}
		if len(row) > 8 {
			k.QuoteVolume = parseFloat(row[7])
			k.Trades = parseInt(row[8])
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("klines %s %s: empty response", symbol, interval)
	}
	return out, nil
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
		Filters    []struct {
			FilterType  string `json:"filterType"`
			MinQty      string `json:"minQty"`
			MaxQty      string `json:"maxQty"`
			StepSize    string `json:"stepSize"`
			MinNotional string `json:"minNotional"`
		} `json:"filters"`
	} `json:"symbols"`
}

// SymbolFilters reads LOT_SIZE and NOTIONAL/MIN_NOTIONAL for symbol.
func (c *Client) SymbolFilters(ctx context.Context, symbol string) (models.SymbolFilters, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var info exchangeInfo
	if err := c.public(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, &info); err != nil {
		return models.SymbolFilters{}, errors.Wrapf(err, "exchange info %s", symbol)
	}

	for _, s := range info.Symbols {
		if !strings.EqualFold(s.Symbol, symbol) {
			continue
		}
		f := models.SymbolFilters{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
		}
		lot := false
		for _, flt := range s.Filters {
			switch flt.FilterType {
			case "LOT_SIZE":
				lot = true
				f.MinQty = parseFloat(flt.MinQty)
				f.MaxQty = parseFloat(flt.MaxQty)
				f.StepSize = parseFloat(flt.StepSize)
			case "NOTIONAL", "MIN_NOTIONAL":
				f.MinNotional = parseFloat(flt.MinNotional)
			}
		}
		if !lot {
			return models.SymbolFilters{}, errors.Errorf("symbol %s has no LOT_SIZE filter", symbol)
		}
		return f, nil
	}
	return models.SymbolFilters{}, errors.Errorf("symbol %s not found", symbol)
}
