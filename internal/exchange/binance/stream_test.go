package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStreamMiniTickers(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		assert.Equal(t, "SUBSCRIBE", sub.Method)
		assert.Equal(t, []string{"btcusdt@miniTicker"}, sub.Params)

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"result":null,"id":1}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"50123.45"}`))
		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	s := NewStream("ws"+strings.TrimPrefix(srv.URL, "http"), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var connected atomic.Bool
	ch := s.MiniTickers(ctx, []string{"BTCUSDT"}, func(ok bool) { connected.Store(ok) })

	select {
	case tick := <-ch:
		assert.Equal(t, "BTCUSDT", tick.Symbol)
		assert.Equal(t, 50123.45, tick.Price)
		assert.Equal(t, int64(1700000000000), tick.Time.UnixMilli())
	case <-time.After(5 * time.Second):
		t.Fatal("no tick received")
	}
	assert.True(t, connected.Load())

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStreamNoSymbols(t *testing.T) {
	s := NewStream("ws://127.0.0.1:1", nil)
	_, ok := <-s.MiniTickers(context.Background(), nil, nil)
	assert.False(t, ok)
}
