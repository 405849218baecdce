package runner

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	"spot_bot/internal/models"
)

// Registry owns the running strategies, one per symbol.
type Registry struct {
	gw  exchange.Gateway
	n   Notifier
	log *zap.Logger

	mu      sync.Mutex
	runners map[string]*Runner
}

func NewRegistry(gw exchange.Gateway, n Notifier, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		gw:      gw,
		n:       n,
		log:     log.Named("runner"),
		runners: make(map[string]*Runner),
	}
}

func key(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// Start creates and starts a runner for cfg.Symbol. Start failures leave no entry behind.
func (reg *Registry) Start(ctx context.Context, cfg models.StrategyConfig) error {
	cfg.Symbol = key(cfg.Symbol)

	reg.mu.Lock()
	if _, ok := reg.runners[cfg.Symbol]; ok {
		reg.mu.Unlock()
		return errors.Wrapf(ErrAlreadyRunning, "symbol %s", cfg.Symbol)
	}
	r, err := New(cfg, reg.gw, reg.n, reg.log)
	if err != nil {
		reg.mu.Unlock()
		return err
	}
	// reserve the slot so a concurrent Start for the same symbol fails fast
	reg.runners[cfg.Symbol] = r
	reg.mu.Unlock()

	if err := r.Start(ctx); err != nil {
		reg.remove(cfg.Symbol, r)
		return errors.Wrapf(err, "start %s", cfg.Symbol)
	}

	// drop the entry once the runner halts itself
	go func() {
		<-r.Done()
		if !r.Running() {
			reg.remove(cfg.Symbol, r)
		}
	}()
	return nil
}

func (reg *Registry) remove(symbol string, r *Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if cur, ok := reg.runners[symbol]; ok && cur == r {
		delete(reg.runners, symbol)
	}
}

func (reg *Registry) Stop(symbol string) error {
	symbol = key(symbol)
	reg.mu.Lock()
	r, ok := reg.runners[symbol]
	if ok {
		delete(reg.runners, symbol)
	}
	reg.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrNotRunning, "symbol %s", symbol)
	}
	return r.Stop()
}

func (reg *Registry) State(symbol string) (models.StrategyState, error) {
	reg.mu.Lock()
	r, ok := reg.runners[key(symbol)]
	reg.mu.Unlock()
	if !ok {
		return models.StrategyState{}, errors.Wrapf(ErrNotRunning, "symbol %s", key(symbol))
	}
	return r.State(), nil
}

// States returns snapshots of every registered strategy, sorted by symbol.
func (reg *Registry) States() []models.StrategyState {
	reg.mu.Lock()
	rs := make([]*Runner, 0, len(reg.runners))
	for _, r := range reg.runners {
		rs = append(rs, r)
	}
	reg.mu.Unlock()

	out := make([]models.StrategyState, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.State())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (reg *Registry) Symbols() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]string, 0, len(reg.runners))
	for s := range reg.runners {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// StopAll stops every runner and waits for their schedules to exit or ctx to end.
func (reg *Registry) StopAll(ctx context.Context) {
	reg.mu.Lock()
	rs := reg.runners
	reg.runners = make(map[string]*Runner)
	reg.mu.Unlock()

	for sym, r := range rs {
		if err := r.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
			reg.log.Warn("stop failed", zap.String("symbol", sym), zap.Error(err))
		}
	}
	for sym, r := range rs {
		select {
		case <-r.Done():
		case <-ctx.Done():
			reg.log.Warn("stop wait interrupted", zap.String("symbol", sym))
			return
		}
	}
}
