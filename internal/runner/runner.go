package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	"spot_bot/internal/indicators"
	"spot_bot/internal/models"
	"spot_bot/internal/strategy"
)

// schedule belongs to one Start. A loop only ever cancels its own schedule.
type schedule struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner drives one symbol: STOPPED -> RUNNING -> STOPPED.
type Runner struct {
	cfg  models.StrategyConfig
	gw   exchange.Gateway
	n    Notifier
	log  *zap.Logger
	eval *strategy.Evaluator
	now  func() time.Time

	lifeMu  sync.Mutex
	running bool
	sched   *schedule
	done    chan struct{}

	inFlight atomic.Bool

	// written only by the cycle, read by State
	mu          sync.RWMutex
	exec        *Executor
	filters     models.SymbolFilters
	account     models.AccountSnapshot
	position    models.PositionState
	ind         models.Indicators
	trend       models.Trend
	lastSignal  models.Signal
	checkCount  int64
	lastCheck   time.Time
	realizedPnl float64
	lastError   string
	history     *History
}

func New(cfg models.StrategyConfig, gw exchange.Gateway, n Notifier, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, errors.New("runner: nil gateway")
	}
	if n == nil {
		n = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	closed := make(chan struct{})
	close(closed)
	return &Runner{
		cfg:      cfg,
		gw:       gw,
		n:        n,
		log:      log.With(zap.String("symbol", cfg.Symbol)),
		eval:     strategy.NewEvaluator(strategy.ConfigFrom(cfg)),
		now:      time.Now,
		done:     closed,
		position: models.FlatPosition(),
		trend:    models.TrendUncertain,
		history:  NewHistory(cfg.HistorySize),
	}, nil
}

func (r *Runner) Symbol() string { return r.cfg.Symbol }

func (r *Runner) policy() RetryPolicy {
	return RetryPolicy{MaxRetries: r.cfg.Retry.MaxRetries, InitialDelay: r.cfg.Retry.InitialDelay}
}

// Start loads filters and balances, runs the first cycle and schedules the
// rest. The runner is RUNNING only if all of that succeeded.
func (r *Runner) Start(ctx context.Context) error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	filters, err := WithRetry(ctx, r.log, "symbol filters", r.policy(), func(ctx context.Context) (models.SymbolFilters, error) {
		return r.gw.SymbolFilters(ctx, r.cfg.Symbol)
	})
	if err != nil {
		return errors.Wrap(err, "start")
	}
	account, err := WithRetry(ctx, r.log, "account", r.policy(), func(ctx context.Context) (models.AccountSnapshot, error) {
		return r.gw.AccountBalances(ctx, r.cfg.Credentials)
	})
	if err != nil {
		return errors.Wrap(err, "start")
	}

	exec := NewExecutor(r.gw, r.cfg, filters, r.n, r.log)
	if bal := account.Total(exec.quote); bal <= 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s balance is %.8f", exec.quote, bal)
	}

	r.mu.Lock()
	r.exec = exec
	r.filters = filters
	r.account = account
	r.position = models.FlatPosition()
	r.lastError = ""
	r.mu.Unlock()

	// cycles are detached from the caller and from Stop: an in-flight order
	// always runs to completion
	base := context.WithoutCancel(ctx)
	if err := r.cycle(base); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(base)
	s := &schedule{cancel: cancel, done: make(chan struct{})}
	r.sched = s
	r.done = s.done
	r.running = true
	go r.loop(loopCtx, base, s)

	r.log.Info("strategy started",
		zap.Duration("interval", r.cfg.CheckInterval),
		zap.Float64("position_size", r.cfg.PositionSize),
	)
	return nil
}

func (r *Runner) loop(ctx, cycleCtx context.Context, s *schedule) {
	defer close(s.done)

	t := time.NewTicker(r.cfg.CheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// select picks randomly when both are ready: a queued tick must not
			// outlive Stop
			if ctx.Err() != nil {
				return
			}
			if err := r.cycle(cycleCtx); err != nil {
				r.halt(s, err)
				return
			}
		}
	}
}

// Stop cancels the schedule. A cycle already executing is not interrupted.
func (r *Runner) Stop() error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if !r.running {
		return ErrNotRunning
	}
	r.running = false
	r.sched.cancel()
	r.log.Info("strategy stopped")
	return nil
}

// halt ends schedule s after a fatal cycle. A later Start owns a new schedule
// and is left untouched.
func (r *Runner) halt(s *schedule, err error) {
	s.cancel()
	r.lifeMu.Lock()
	current := r.running && r.sched == s
	if current {
		r.running = false
	}
	r.lifeMu.Unlock()

	r.setError(err)
	if current {
		r.log.Error("strategy halted", zap.Error(err))
		r.n.StrategyStopped(context.Background(), r.cfg.Symbol, err.Error())
	}
}

func (r *Runner) Running() bool {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	return r.running
}

// Done is closed when the schedule goroutine exits.
func (r *Runner) Done() <-chan struct{} {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	return r.done
}

// cycle runs one iteration. Only a fatal condition comes back as an error;
// everything else ends up in the log, LastError or an order record.
func (r *Runner) cycle(ctx context.Context) (fatal error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.log.Debug("previous cycle still running, tick skipped")
		return nil
	}
	defer r.inFlight.Store(false)

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("cycle panic", zap.Any("panic", p), zap.Stack("stack"))
			r.setError(fmt.Errorf("cycle panic: %v", p))
		}
	}()

	span, ctx := opentracing.StartSpanFromContext(ctx, "strategy.cycle")
	span.SetTag("symbol", r.cfg.Symbol)
	defer span.Finish()

	r.mu.Lock()
	r.checkCount++
	r.lastCheck = r.now()
	exec := r.exec
	pos := r.position
	r.mu.Unlock()

	account, err := WithRetry(ctx, r.log, "account", r.policy(), func(ctx context.Context) (models.AccountSnapshot, error) {
		return r.gw.AccountBalances(ctx, r.cfg.Credentials)
	})
	r.mu.Lock()
	if err != nil {
		r.log.Warn("account refresh failed, keeping last snapshot", zap.Error(err))
	} else {
		r.account = account
	}
	account = r.account.Clone()
	r.mu.Unlock()

	balance := account.Total(exec.quote)
	if balance <= 0 && !pos.Open() {
		span.SetTag("error", true)
		return errors.Wrapf(ErrInsufficientBalance, "%s balance is %.8f", exec.quote, balance)
	}

	m, vol, err := r.market(ctx)
	if err != nil {
		span.SetTag("error", true)
		r.log.Warn("cycle aborted", zap.Error(err))
		r.setError(err)
		return nil
	}

	d := r.eval.Evaluate(pos, m)
	if d.NewStopLoss > 0 {
		r.log.Info("trailing stop moved",
			zap.Float64("from", pos.StopLossPrice),
			zap.Float64("to", d.NewStopLoss),
		)
		pos.StopLossPrice = d.NewStopLoss
	}
	if pos.Open() {
		pos.UnrealizedPnl = pos.PnlPct(m.Price)
	}

	r.mu.Lock()
	r.ind = models.Indicators{
		CurrentPrice: m.Price,
		EMA:          m.HourlyEMA,
		FastEMA:      m.FastEMA,
		RSI:          m.RSI,
		PriceChange:  m.PriceChange * 100,
	}
	r.trend = d.Trend
	r.position = pos
	r.lastError = ""
	r.mu.Unlock()

	span.SetTag("action", string(d.Action))
	switch d.Action {
	case strategy.ActionEnter:
		r.log.Info("entry signal", zap.String("trend", string(d.Trend)), zap.String("reason", d.Reason))
		out := exec.Enter(ctx, EntryRequest{Side: d.Side, Price: m.Price, Balance: balance, Volatility: vol})
		r.apply(models.SignalEntry, out)
	case strategy.ActionExit:
		r.log.Info("exit signal", zap.String("reason", d.Reason))
		out := exec.Exit(ctx, ExitRequest{Position: pos, Price: m.Price, Reason: d.Reason, Account: account})
		r.apply(models.SignalExit, out)
	}
	return nil
}

// market fetches the three timeframes and reduces them to indicator values.
func (r *Runner) market(ctx context.Context) (strategy.Market, float64, error) {
	fetch := func(interval string, limit int) ([]float64, error) {
		ks, err := WithRetry(ctx, r.log, "klines "+interval, r.policy(), func(ctx context.Context) ([]models.Kline, error) {
			return r.gw.Klines(ctx, r.cfg.Symbol, interval, limit)
		})
		if err != nil {
			return nil, err
		}
		return models.Closes(ks), nil
	}

	hourly, err := fetch(models.Interval1h, r.cfg.Klines.Hourly)
	if err != nil {
		return strategy.Market{}, 0, err
	}
	quarter, err := fetch(models.Interval15m, r.cfg.Klines.Quarter)
	if err != nil {
		return strategy.Market{}, 0, err
	}
	fast, err := fetch(models.Interval5m, r.cfg.Klines.Fast)
	if err != nil {
		return strategy.Market{}, 0, err
	}

	hourlyEMA, err := indicators.LastEMA(hourly, r.cfg.EMAPeriod)
	if err != nil {
		return strategy.Market{}, 0, errors.Wrap(err, "1h ema")
	}
	fastEMA, err := indicators.LastEMA(quarter, r.cfg.FastEMAPeriod())
	if err != nil {
		return strategy.Market{}, 0, errors.Wrap(err, "15m ema")
	}
	rsi, err := indicators.LastRSI(fast, r.cfg.RSIPeriod)
	if err != nil {
		return strategy.Market{}, 0, errors.Wrap(err, "5m rsi")
	}
	change, err := indicators.PriceChange(fast, r.cfg.PriceChangeBars)
	if err != nil {
		return strategy.Market{}, 0, errors.Wrap(err, "5m price change")
	}

	var vol float64
	if r.cfg.Dynamic.Enabled {
		vol = indicators.Volatility(quarter, r.cfg.Dynamic.Bars)
	}

	return strategy.Market{
		Price:       fast[len(fast)-1],
		HourlyClose: hourly[len(hourly)-1],
		HourlyEMA:   hourlyEMA,
		FastClose:   quarter[len(quarter)-1],
		FastEMA:     fastEMA,
		RSI:         rsi,
		PriceChange: change,
	}, vol, nil
}

func (r *Runner) apply(sig models.Signal, out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSignal = sig
	r.position = out.Position
	if out.Record.Status != "" {
		r.history.Add(out.Record)
	}
	if sig == models.SignalExit && out.Filled {
		r.realizedPnl = out.RealizedPnl
	}
}

func (r *Runner) setError(err error) {
	r.mu.Lock()
	r.lastError = err.Error()
	r.mu.Unlock()
}

// State returns a deep copy; callers never share memory with the loop.
func (r *Runner) State() models.StrategyState {
	running := r.Running()

	r.mu.RLock()
	defer r.mu.RUnlock()

	quote := r.cfg.QuoteAsset
	base := r.filters.BaseAsset
	if r.exec != nil {
		quote, base = r.exec.quote, r.exec.base
	}
	st := models.StrategyState{
		Symbol:         r.cfg.Symbol,
		Running:        running,
		Position:       models.ViewOf(r.position),
		Indicators:     r.ind,
		Trend:          r.trend,
		LastSignal:     r.lastSignal,
		CheckCount:     r.checkCount,
		LastCheck:      r.lastCheck,
		AccountBalance: r.account.Total(quote),
		RealizedPnl:    r.realizedPnl,
		LastError:      r.lastError,
		Orders:         r.history.Records(),
	}
	if base != "" {
		st.PositionValue = r.account.Total(base) * r.ind.CurrentPrice
	}
	return st
}
