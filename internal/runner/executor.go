package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	"spot_bot/internal/helper"
	"spot_bot/internal/models"
)

// Notifier receives every order outcome and fatal stops.
type Notifier interface {
	OrderPlaced(ctx context.Context, symbol string, rec models.OrderRecord)
	StrategyStopped(ctx context.Context, symbol string, reason string)
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(context.Context, string, models.OrderRecord) {}
func (nopNotifier) StrategyStopped(context.Context, string, string)         {}

// shortCoverCap is the share of free quote balance a SHORT cover may spend.
const shortCoverCap = 0.99

// Executor places entry and exit orders and turns their results into position
// transitions and order records. It never retries a submission.
type Executor struct {
	gw      exchange.Gateway
	cfg     models.StrategyConfig
	filters models.SymbolFilters
	base    string
	quote   string
	n       Notifier
	log     *zap.Logger
	now     func() time.Time
}

func NewExecutor(gw exchange.Gateway, cfg models.StrategyConfig, filters models.SymbolFilters, n Notifier, log *zap.Logger) *Executor {
	if n == nil {
		n = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	base := filters.BaseAsset
	if base == "" {
		base = helper.BaseAsset(cfg.Symbol, cfg.QuoteAsset)
	}
	quote := filters.QuoteAsset
	if quote == "" {
		quote = cfg.QuoteAsset
	}
	return &Executor{
		gw:      gw,
		cfg:     cfg,
		filters: filters,
		base:    base,
		quote:   quote,
		n:       n,
		log:     log,
		now:     time.Now,
	}
}

type EntryRequest struct {
	Side  models.PositionSide
	Price float64
	// Balance is the quote total used for sizing.
	Balance float64
	// Volatility feeds dynamic stop/target levels when enabled.
	Volatility float64
}

type ExitRequest struct {
	Position models.PositionState
	Price    float64
	Reason   string
	Account  models.AccountSnapshot
}

// Outcome is what the runner applies after an order attempt.
type Outcome struct {
	Record   models.OrderRecord
	Position models.PositionState
	Filled   bool
	// RealizedPnl is set on a filled exit, percent.
	RealizedPnl float64
}

func (e *Executor) Enter(ctx context.Context, req EntryRequest) Outcome {
	side := req.Side.OrderSide()
	flat := models.FlatPosition()
	if side == models.SideNone {
		return e.reject(ctx, flat, side, req.Price, 0, "no entry side for trend")
	}

	qty := EntryQuantity(req.Balance, req.Price, e.cfg.PositionSize, e.cfg.FeeBuffer, e.filters)
	if qty == 0 {
		return e.reject(ctx, flat, side, req.Price, 0,
			fmt.Sprintf("quantity below exchange minimum (balance %.2f %s)", req.Balance, e.quote))
	}

	fresh, err := e.gw.AccountBalances(ctx, e.cfg.Credentials)
	if err != nil {
		return e.reject(ctx, flat, side, req.Price, qty, "balance re-check failed: "+err.Error())
	}
	switch side {
	case models.SideBuy:
		need := qty * req.Price * (1 + e.cfg.TakerFee)
		if free := fresh.Free(e.quote); need > free {
			return e.reject(ctx, flat, side, req.Price, qty,
				fmt.Sprintf("insufficient %s: need %.4f incl. fee, free %.4f", e.quote, need, free))
		}
	case models.SideSell:
		if free := fresh.Free(e.base); qty > free {
			return e.reject(ctx, flat, side, req.Price, qty,
				fmt.Sprintf("insufficient %s: need %g, free %g", e.base, qty, free))
		}
	}

	res, err := e.gw.SubmitMarketOrder(ctx, models.OrderRequest{
		Symbol:        e.cfg.Symbol,
		Side:          side,
		Quantity:      qty,
		ClientOrderID: exchange.NewClientOrderID(),
	}, e.cfg.Credentials)
	if err != nil {
		return e.reject(ctx, flat, side, req.Price, qty, classify(err))
	}

	if res.ExecutedQty > 0 {
		qty = res.ExecutedQty
	}
	sl, tp := e.levels(req.Volatility)
	pos := models.PositionState{
		Side:         req.Side,
		EntryPrice:   req.Price,
		Quantity:     qty,
		StopDistance: sl,
		OpenedAt:     e.now(),
	}
	if req.Side == models.PositionLong {
		pos.StopLossPrice = req.Price * (1 - sl)
		pos.TakeProfitPrice = req.Price * (1 + tp)
	} else {
		pos.StopLossPrice = req.Price * (1 + sl)
		pos.TakeProfitPrice = req.Price * (1 - tp)
	}

	rec := models.OrderRecord{
		Time:     e.now(),
		Side:     side,
		Price:    req.Price,
		Quantity: qty,
		Status:   models.OrderSuccess,
		Message:  fmt.Sprintf("open %s, SL %.4f, TP %.4f", req.Side, pos.StopLossPrice, pos.TakeProfitPrice),
		OrderID:  res.OrderID,
	}
	e.log.Info("position opened",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("side", string(req.Side)),
		zap.Float64("price", req.Price),
		zap.Float64("qty", qty),
		zap.Int64("order_id", res.OrderID),
	)
	e.n.OrderPlaced(ctx, e.cfg.Symbol, rec)
	return Outcome{Record: rec, Position: pos, Filled: true}
}

// levels returns stop-loss and take-profit fractions, volatility-scaled when enabled.
func (e *Executor) levels(volatility float64) (float64, float64) {
	sl, tp := e.cfg.StopLoss, e.cfg.TakeProfit
	d := e.cfg.Dynamic
	if !d.Enabled || volatility <= 0 {
		return sl, tp
	}
	sl = math.Max(sl, volatility*d.K)
	return sl, sl * d.RewardRatio
}

func (e *Executor) Exit(ctx context.Context, req ExitRequest) Outcome {
	pos := req.Position
	side := pos.Side.OrderSide().Opposite()

	var qty float64
	switch pos.Side {
	case models.PositionLong:
		qty = ExitQuantity(req.Account.Free(e.base), e.filters)
	case models.PositionShort:
		if req.Price > 0 {
			affordable := req.Account.Free(e.quote) * shortCoverCap / req.Price
			qty = ExitQuantity(math.Min(pos.Quantity, affordable), e.filters)
		}
	default:
		return Outcome{Position: models.FlatPosition()}
	}

	if qty == 0 {
		// nothing left on the account: the position is gone either way
		return e.reject(ctx, models.FlatPosition(), side, req.Price, 0, "nothing to close")
	}

	res, err := e.gw.SubmitMarketOrder(ctx, models.OrderRequest{
		Symbol:        e.cfg.Symbol,
		Side:          side,
		Quantity:      qty,
		ClientOrderID: exchange.NewClientOrderID(),
	}, e.cfg.Credentials)
	if err != nil {
		return e.reject(ctx, pos, side, req.Price, qty, classify(err))
	}

	if res.ExecutedQty > 0 {
		qty = res.ExecutedQty
	}
	pnl := pos.PnlPct(req.Price)
	rec := models.OrderRecord{
		Time:     e.now(),
		Side:     side,
		Price:    req.Price,
		Quantity: qty,
		Status:   models.OrderSuccess,
		Message:  fmt.Sprintf("close %s (%s), PnL %.2f%%", pos.Side, req.Reason, pnl),
		OrderID:  res.OrderID,
	}
	e.log.Info("position closed",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("reason", req.Reason),
		zap.Float64("price", req.Price),
		zap.Float64("pnl_pct", pnl),
		zap.Int64("order_id", res.OrderID),
	)
	e.n.OrderPlaced(ctx, e.cfg.Symbol, rec)
	return Outcome{Record: rec, Position: models.FlatPosition(), Filled: true, RealizedPnl: pnl}
}

func (e *Executor) reject(ctx context.Context, pos models.PositionState, side models.Side, price, qty float64, msg string) Outcome {
	rec := models.OrderRecord{
		Time:     e.now(),
		Side:     side,
		Price:    price,
		Quantity: qty,
		Status:   models.OrderRejected,
		Message:  msg,
	}
	e.log.Warn("order rejected",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("side", string(side)),
		zap.Float64("qty", qty),
		zap.String("reason", msg),
	)
	e.n.OrderPlaced(ctx, e.cfg.Symbol, rec)
	return Outcome{Record: rec, Position: pos}
}

func classify(err error) string {
	switch {
	case exchange.IsRejected(err):
		return "rejected by exchange: " + err.Error()
	case exchange.IsUnavailable(err):
		return "exchange unavailable: " + err.Error()
	default:
		return err.Error()
	}
}
