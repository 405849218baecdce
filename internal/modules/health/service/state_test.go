package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	s := NewState()
	assert.False(t, s.Ready())
	assert.True(t, s.LastTick().IsZero())

	s.SetReady(true)
	s.SetWSConnected(true)
	now := time.Unix(1700000000, 0)
	s.SetPrice("BTCUSDT", 50000, now)

	assert.True(t, s.Ready())
	assert.True(t, s.WSConnected())
	assert.Equal(t, now, s.LastTick())

	prices := s.Prices()
	assert.Equal(t, map[string]float64{"BTCUSDT": 50000}, prices)
	prices["BTCUSDT"] = 1
	assert.Equal(t, 50000.0, s.Prices()["BTCUSDT"])
}
