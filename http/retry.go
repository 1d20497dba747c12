package http

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultBackoffFactor  = 2.0
	DefaultJitterFactor   = 0.1

	// maxRetryAfter caps the wait a mirror can ask for.
	maxRetryAfter = 5 * time.Minute
)

// RetryConfig holds retry behavior configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFactor   float64
}

// DefaultRetryConfig returns retry configuration with sensible defaults
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		BackoffFactor:  DefaultBackoffFactor,
		JitterFactor:   DefaultJitterFactor,
	}
}

// IsRetriable reports whether a failed round trip may succeed when sent
// again: timeouts, dropped or refused connections and truncated responses.
// An open breaker is never retried.
func IsRetriable(err error) bool {
	switch {
	case err == nil, errors.Is(err, ErrMirrorUnavailable), errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsRetriableStatus reports whether a mirror status is transient.
// GitHub raw content answers 429 under load; the release CDN answers
// 502, 503 and 504 while an edge node recovers.
func IsRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// CalculateBackoff is InitialBackoff * BackoffFactor^attempt, capped at
// MaxBackoff, with +/- JitterFactor of random spread.
func (rc *RetryConfig) CalculateBackoff(attempt int) time.Duration {
	base := float64(rc.InitialBackoff) * math.Pow(rc.BackoffFactor, float64(max(attempt, 0)))
	base = min(base, float64(rc.MaxBackoff))

	d := time.Duration(base * (1 + rc.JitterFactor*(2*rand.Float64()-1)))
	if d <= 0 {
		return rc.InitialBackoff
	}
	return d
}

// ParseRetryAfter returns the wait a Retry-After header asks for, either
// delay-seconds or an HTTP date, capped at five minutes. Missing, invalid
// and past values are 0.
func ParseRetryAfter(headerValue string) time.Duration {
	v := strings.TrimSpace(headerValue)
	if v == "" {
		return 0
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(v); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = time.Until(at)
	}
	return min(max(d, 0), maxRetryAfter)
}
