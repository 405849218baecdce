package exchange

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientOrderID(t *testing.T) {
	a, b := NewClientOrderID(), NewClientOrderID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 29)
	assert.True(t, strings.HasPrefix(a, "spot-"))
}
