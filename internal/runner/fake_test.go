package runner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"spot_bot/internal/exchange"
	"spot_bot/internal/models"
)

// fakeGateway is an in-memory exchange: market orders fill at the last 5m close
// and move balances.
type fakeGateway struct {
	mu sync.Mutex

	closes  map[string][]float64
	filters models.SymbolFilters
	account map[string]models.Balance

	accountFailures int // next N account reads fail
	accountCalls    int
	klineErr        error
	orderErr        error
	panicOnKlines   bool

	orders []models.OrderRequest
	nextID int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		closes: map[string][]float64{
			models.Interval1h:  linear(100, 100, 0.5),
			models.Interval15m: linear(50, 100, 0.1),
			models.Interval5m:  zigzag(30, 100, 1.0, 0.8),
		},
		filters: models.SymbolFilters{
			Symbol:     "BTCUSDT",
			BaseAsset:  "BTC",
			QuoteAsset: "USDT",
			MinQty:     0.0001,
			MaxQty:     1000,
			StepSize:   0.0001,
		},
		account: map[string]models.Balance{"USDT": {Free: 1000}},
		nextID:  1,
	}
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// zigzag alternates +up and -down, drifting by up-down every two bars.
func zigzag(n int, start, up, down float64) []float64 {
	out := make([]float64, n)
	out[0] = start
	for i := 1; i < n; i++ {
		if i%2 == 1 {
			out[i] = out[i-1] + up
		} else {
			out[i] = out[i-1] - down
		}
	}
	return out
}

func (g *fakeGateway) setCloses(interval string, closes []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closes[interval] = closes
}

func (g *fakeGateway) setBalance(asset string, b models.Balance) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.account[asset] = b
}

func (g *fakeGateway) failAccount(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accountFailures = n
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accountCalls
}

func (g *fakeGateway) placed() []models.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.OrderRequest(nil), g.orders...)
}

func (g *fakeGateway) price() float64 {
	c := g.closes[models.Interval5m]
	return c[len(c)-1]
}

func (g *fakeGateway) Klines(_ context.Context, _ string, interval string, limit int) ([]models.Kline, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.panicOnKlines {
		panic("kline decoder exploded")
	}
	if g.klineErr != nil {
		return nil, g.klineErr
	}
	closes := g.closes[interval]
	if limit > 0 && len(closes) > limit {
		closes = closes[len(closes)-limit:]
	}
	out := make([]models.Kline, len(closes))
	for i, c := range closes {
		out[i] = models.Kline{Open: c, High: c, Low: c, Close: c}
	}
	return out, nil
}

func (g *fakeGateway) SymbolFilters(context.Context, string) (models.SymbolFilters, error) {
	return g.filters, nil
}

func (g *fakeGateway) AccountBalances(context.Context, models.Credentials) (models.AccountSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accountCalls++
	if g.accountFailures > 0 {
		g.accountFailures--
		return models.AccountSnapshot{}, exchange.Unavailable(errors.New("connection reset"), "GET /api/v3/account")
	}
	snap := models.AccountSnapshot{Balances: make(map[string]models.Balance, len(g.account))}
	for k, v := range g.account {
		snap.Balances[k] = v
	}
	return snap, nil
}

func (g *fakeGateway) SubmitMarketOrder(_ context.Context, req models.OrderRequest, _ models.Credentials) (models.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return models.OrderResult{}, g.orderErr
	}
	g.orders = append(g.orders, req)

	px := g.price()
	base, quote := g.account["BTC"], g.account["USDT"]
	if req.Side == models.SideBuy {
		base.Free += req.Quantity
		quote.Free -= req.Quantity * px
	} else {
		base.Free -= req.Quantity
		quote.Free += req.Quantity * px
	}
	g.account["BTC"], g.account["USDT"] = base, quote

	id := g.nextID
	g.nextID++
	return models.OrderResult{
		OrderID:       id,
		ClientOrderID: req.ClientOrderID,
		Status:        "FILLED",
		ExecutedQty:   req.Quantity,
		QuoteQty:      req.Quantity * px,
		AvgPrice:      px,
	}, nil
}

// blockingGateway parks the first armed call to op until release is closed.
// An armed account read then answers with an empty quote balance.
type blockingGateway struct {
	*fakeGateway
	op      string // "klines" or "account"
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newBlockingGateway(op string) *blockingGateway {
	return &blockingGateway{
		fakeGateway: newFakeGateway(),
		op:          op,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *blockingGateway) park(op string) bool {
	if op != g.op || !g.armed.CompareAndSwap(true, false) {
		return false
	}
	close(g.entered)
	<-g.release
	return true
}

func (g *blockingGateway) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Kline, error) {
	if interval == models.Interval1h {
		g.park("klines")
	}
	return g.fakeGateway.Klines(ctx, symbol, interval, limit)
}

func (g *blockingGateway) AccountBalances(ctx context.Context, creds models.Credentials) (models.AccountSnapshot, error) {
	if g.park("account") {
		return models.AccountSnapshot{Balances: map[string]models.Balance{"USDT": {}}}, nil
	}
	return g.fakeGateway.AccountBalances(ctx, creds)
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []models.OrderRecord
	stops   []string
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, _ string, rec models.OrderRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
}

func (n *recordingNotifier) StrategyStopped(_ context.Context, symbol, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops = append(n.stops, symbol)
}

func (n *recordingNotifier) stopCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stops)
}
