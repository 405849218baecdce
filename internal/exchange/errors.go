package exchange

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrOrderRejected is a business rejection by the exchange: bad quantity, no balance, etc.
	ErrOrderRejected = errors.New("order rejected")
	// ErrGatewayUnavailable covers transport failures, 5xx and rate limiting.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// APIError is the {code,msg} body the exchange returns with non-2xx responses.
type APIError struct {
	Status int
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange error: http=%d code=%d msg=%s", e.Status, e.Code, e.Msg)
}

// Unwrap classifies the error so callers can use errors.Is with the sentinels above.
func (e *APIError) Unwrap() error {
	if Retryable(e.Status) {
		return ErrGatewayUnavailable
	}
	return ErrOrderRejected
}

// Retryable reports whether an HTTP status is a transient condition.
func Retryable(status int) bool {
	switch {
	case status >= 500:
		return true
	case status == http.StatusTooManyRequests, status == http.StatusTeapot:
		return true
	case status == http.StatusRequestTimeout:
		return true
	}
	return false
}

// Unavailable wraps a transport-level error.
func Unavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&unavailable{cause: err}, op)
}

type unavailable struct{ cause error }

func (u *unavailable) Error() string { return u.cause.Error() }

func (u *unavailable) Is(target error) bool { return target == ErrGatewayUnavailable }

func (u *unavailable) Unwrap() error { return u.cause }

// IsRejected reports an exchange-side business rejection.
func IsRejected(err error) bool { return errors.Is(err, ErrOrderRejected) }

// IsUnavailable reports a network-level or server-side failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrGatewayUnavailable) }
