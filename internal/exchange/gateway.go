package exchange

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"spot_bot/internal/models"
)

// Gateway is everything the strategy engine needs from an exchange.
// Implementations must be safe for concurrent use by independent strategies.
type Gateway interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Kline, error)
	SymbolFilters(ctx context.Context, symbol string) (models.SymbolFilters, error)
	AccountBalances(ctx context.Context, creds models.Credentials) (models.AccountSnapshot, error)
	SubmitMarketOrder(ctx context.Context, req models.OrderRequest, creds models.Credentials) (models.OrderResult, error)
}

// NewClientOrderID returns a unique client order id, short enough for any
// exchange limit we talk to (Binance allows 36 characters).
func NewClientOrderID() string {
	return "spot-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
