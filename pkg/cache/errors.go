package cache

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryableError marks a cache failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return stderrors.As(err, &re)
}

// Transient reports whether err looks like a dropped or refused connection
// rather than a reply from the server. Redis replies such as WRONGTYPE or
// OOM are not transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var rerr redis.Error
	if stderrors.As(err, &rerr) {
		return false
	}
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) ||
		stderrors.Is(err, syscall.ECONNRESET) || stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.EPIPE) {
		return true
	}
	var nerr net.Error
	return stderrors.As(err, &nerr)
}

// RetryPolicy bounds how often a cache write is attempted.
type RetryPolicy struct {
	Attempts int           `json:"attempts" toml:"attempts" yaml:"attempts" validate:"gte=0,lte=10"`
	Delay    time.Duration `json:"delay" toml:"delay" yaml:"delay" validate:"gte=0"`
}

// Default retry settings. Cache writes happen on the request path, so the
// first delay is short.
const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 100 * time.Millisecond
)

// SetDefaults fills in zero fields.
func (p *RetryPolicy) SetDefaults() {
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetryAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetryDelay
	}
}

// RetryWithBackoff calls fn up to p.Attempts times, doubling the delay after
// each retryable failure. Errors not wrapped with [Retryable] are returned
// at once.
func RetryWithBackoff(ctx context.Context, p RetryPolicy, fn func() error) error {
	p.SetDefaults()
	delay := p.Delay
	var lastErr error

	for i := 0; i < p.Attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < p.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
