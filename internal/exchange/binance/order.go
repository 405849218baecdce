package binance

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	"spot_bot/internal/models"
)

type orderResponse struct {
	Symbol             string `json:"symbol"`
	OrderID            int64  `json:"orderId"`
	ClientOrderID      string `json:"clientOrderId"`
	Status             string `json:"status"`
	ExecutedQty        string `json:"executedQty"`
	CummulativeQuoteQt string `json:"cummulativeQuoteQty"`
	Fills              []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}

// SubmitMarketOrder places a MARKET order. It is never retried here: a lost
// response must not turn into a second order.
func (c *Client) SubmitMarketOrder(ctx context.Context, req models.OrderRequest, creds models.Credentials) (models.OrderResult, error) {
	if req.Quantity <= 0 {
		return models.OrderResult{}, errors.Wrapf(exchange.ErrOrderRejected, "quantity %v must be > 0", req.Quantity)
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return models.OrderResult{}, errors.Wrapf(exchange.ErrOrderRejected, "unknown side %q", req.Side)
	}
	clientID := req.ClientOrderID
	if clientID == "" {
		clientID = exchange.NewClientOrderID()
	}

	params := url.Values{}
	params.Set("symbol", strings.ToUpper(req.Symbol))
	params.Set("side", string(req.Side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	params.Set("newClientOrderId", clientID)
	params.Set("newOrderRespType", "FULL")

	var resp orderResponse
	if err := c.signed(ctx, http.MethodPost, "/api/v3/order", params, creds, &resp); err != nil {
		return models.OrderResult{}, errors.Wrapf(err, "market %s %s", req.Side, req.Symbol)
	}

	res := models.OrderResult{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Status:        resp.Status,
		ExecutedQty:   parseFloat(resp.ExecutedQty),
		QuoteQty:      parseFloat(resp.CummulativeQuoteQt),
	}
	var qty, notional float64
	for _, f := range resp.Fills {
		q := parseFloat(f.Qty)
		qty += q
		notional += q * parseFloat(f.Price)
	}
	if qty > 0 {
		res.AvgPrice = notional / qty
	}

	c.log.Info("market order placed",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.Int64("order_id", res.OrderID),
		zap.String("client_order_id", clientID),
		zap.Float64("executed_qty", res.ExecutedQty),
	)
	return res, nil
}
