package exchange

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAPIErrorClassification(t *testing.T) {
	rejected := errors.Wrap(&APIError{Status: 400, Code: -2010, Msg: "insufficient balance"}, "submit")
	assert.True(t, IsRejected(rejected))
	assert.False(t, IsUnavailable(rejected))

	var apiErr *APIError
	assert.True(t, errors.As(rejected, &apiErr))
	assert.Equal(t, -2010, apiErr.Code)

	busy := &APIError{Status: 503, Code: -1001, Msg: "internal"}
	assert.True(t, IsUnavailable(busy))
	assert.False(t, IsRejected(busy))

	limited := &APIError{Status: 429, Code: -1003, Msg: "too many requests"}
	assert.True(t, IsUnavailable(limited))
}

func TestUnavailable(t *testing.T) {
	err := Unavailable(context.DeadlineExceeded, "get klines")
	assert.True(t, IsUnavailable(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "get klines")
	assert.Nil(t, Unavailable(nil, "noop"))
}
