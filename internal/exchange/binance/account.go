package binance

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"spot_bot/internal/models"
)

type accountResponse struct {
	UpdateTime int64 `json:"updateTime"`
	Balances   []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

func (c *Client) AccountBalances(ctx context.Context, creds models.Credentials) (models.AccountSnapshot, error) {
	params := url.Values{}
	params.Set("omitZeroBalances", "true")

	var resp accountResponse
	if err := c.signed(ctx, http.MethodGet, "/api/v3/account", params, creds, &resp); err != nil {
		return models.AccountSnapshot{}, errors.Wrap(err, "account")
	}

	snap := models.AccountSnapshot{
		Balances:  make(map[string]models.Balance, len(resp.Balances)),
		UpdatedAt: c.now(),
	}
	for _, b := range resp.Balances {
		snap.Balances[b.Asset] = models.Balance{
			Free:   parseFloat(b.Free),
			Locked: parseFloat(b.Locked),
		}
	}
	return snap, nil
}
