package service

import (
	"sync"
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds

	mu     sync.RWMutex
	prices map[string]float64 // symbol -> last price from the stream
}

func NewState() *State {
	s := &State{startedAt: time.Now(), prices: make(map[string]float64)}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// SetPrice records a stream tick for symbol and touches the tick clock.
func (s *State) SetPrice(symbol string, price float64, t time.Time) {
	s.mu.Lock()
	s.prices[symbol] = price
	s.mu.Unlock()
	s.TouchTick(t)
}

func (s *State) Prices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
