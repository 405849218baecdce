package binance

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// ConnListener is told whenever the stream connects or drops.
type ConnListener func(connected bool)

// Stream watches <symbol>@miniTicker for a set of symbols over one connection.
type Stream struct {
	url        string
	dialer     *websocket.Dialer
	log        *zap.Logger
	pingEvery  time.Duration
	retryDelay time.Duration
	maxDelay   time.Duration
}

func NewStream(url string, log *zap.Logger) *Stream {
	if url == "" {
		url = DefaultWSURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{
		url:        strings.TrimRight(url, "/"),
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:        log.Named("binance_ws"),
		pingEvery:  3 * time.Minute,
		retryDelay: time.Second,
		maxDelay:   30 * time.Second,
	}
}

type miniTicker struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
}

// MiniTickers streams last prices until ctx is done. The channel is closed on exit.
func (s *Stream) MiniTickers(ctx context.Context, symbols []string, onConn ConnListener) <-chan Tick {
	ch := make(chan Tick, 16)
	if onConn == nil {
		onConn = func(bool) {}
	}
	go func() {
		defer close(ch)
		if len(symbols) == 0 {
			return
		}

		params := make([]string, 0, len(symbols))
		for _, sym := range symbols {
			params = append(params, strings.ToLower(sym)+"@miniTicker")
		}

		delay := s.retryDelay
		for {
			if ctx.Err() != nil {
				return
			}
			s.log.Info("connect", zap.Strings("streams", params))
			conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
			if err != nil {
				s.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", delay))
				if !sleep(ctx, delay) {
					return
				}
				delay = min(delay*2, s.maxDelay)
				continue
			}

			sub := map[string]any{"method": "SUBSCRIBE", "params": params, "id": 1}
			if err := conn.WriteJSON(sub); err != nil {
				s.log.Warn("subscribe failed", zap.Error(err))
				_ = conn.Close()
				if !sleep(ctx, delay) {
					return
				}
				continue
			}

			delay = s.retryDelay
			onConn(true)
			s.read(ctx, conn, ch)
			onConn(false)

			if !sleep(ctx, delay) {
				return
			}
		}
	}()
	return ch
}

func (s *Stream) read(ctx context.Context, conn *websocket.Conn, ch chan<- Tick) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.pingEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				// unblocks ReadMessage below
				_ = conn.Close()
				return
			case <-done:
				return
			case <-t.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("read failed", zap.Error(err))
			}
			return
		}

		var frame miniTicker
		if err := sonic.Unmarshal(msg, &frame); err != nil || frame.Event != "24hrMiniTicker" {
			continue
		}
		p := parseFloat(frame.Close)
		if p <= 0 {
			continue
		}
		select {
		case ch <- Tick{Symbol: frame.Symbol, Price: p, Time: time.UnixMilli(frame.EventTime)}:
		case <-ctx.Done():
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
