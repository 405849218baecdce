package runner

import "github.com/pkg/errors"

var (
	ErrAlreadyRunning = errors.New("strategy already running")
	ErrNotRunning     = errors.New("strategy not running")
	// ErrInsufficientBalance is fatal: the strategy refuses to start or stops itself.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrMarketData is returned once a market data read exhausted its retries.
	ErrMarketData = errors.New("market data unavailable")
)
