package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabled(t *testing.T) {
	tracer, closeFn, err := InitTracer(Config{})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tracer)
	assert.IsType(t, opentracing.NoopTracer{}, opentracing.GlobalTracer())
	assert.NotPanics(t, closeFn)
}

func TestInitTracerEnabled(t *testing.T) {
	old := SetServiceName("spot_bot_test")
	defer SetServiceName(old)

	tracer, closeFn, err := InitTracer(Config{Enabled: true, Host: "127.0.0.1", Port: 6831})
	require.NoError(t, err)
	defer closeFn()

	span := tracer.StartSpan("test")
	span.SetTag("symbol", "BTCUSDT")
	span.Finish()
	assert.Same(t, tracer, opentracing.GlobalTracer())
}
