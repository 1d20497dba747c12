package http

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMirrorUnavailable is wrapped by requests rejected while a host's
// breaker is open.
var ErrMirrorUnavailable = errors.New("mirror unavailable")

// BreakerConfig controls when a host stops receiving requests.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed attempts that opens
	// the breaker. Zero disables it.
	MaxFailures int
	// Cooldown is how long an open breaker rejects requests before one
	// probe is let through.
	Cooldown time.Duration
}

// DefaultBreakerConfig opens after five failed attempts for 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, Cooldown: 30 * time.Second}
}

// BreakerOpenError is returned without sending the request.
type BreakerOpenError struct {
	Host     string
	Failures int
	Until    time.Time
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("mirror %s failed %d requests in a row; not retrying before %s",
		e.Host, e.Failures, e.Until.Format(time.TimeOnly))
}

func (e *BreakerOpenError) Unwrap() error { return ErrMirrorUnavailable }

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerProbing
)

type hostBreaker struct {
	state    breakerState
	failures int
	openedAt time.Time
}

// breakers tracks one breaker per mirror host.
type breakers struct {
	cfg BreakerConfig
	now func() time.Time

	mu    sync.Mutex
	hosts map[string]*hostBreaker
}

func newBreakers(cfg BreakerConfig) *breakers {
	return &breakers{cfg: cfg, now: time.Now, hosts: map[string]*hostBreaker{}}
}

func (b *breakers) get(host string) *hostBreaker {
	hb, ok := b.hosts[host]
	if !ok {
		hb = &hostBreaker{}
		b.hosts[host] = hb
	}
	return hb
}

// allow reports whether a request to host may be sent. After the cooldown
// a single probe is admitted; its outcome closes or reopens the breaker.
func (b *breakers) allow(host string) error {
	if b == nil || b.cfg.MaxFailures <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	hb := b.get(host)
	switch hb.state {
	case breakerClosed:
		return nil
	case breakerOpen:
		until := hb.openedAt.Add(b.cfg.Cooldown)
		if b.now().Before(until) {
			return &BreakerOpenError{Host: host, Failures: hb.failures, Until: until}
		}
		hb.state = breakerProbing
		return nil
	default:
		return &BreakerOpenError{Host: host, Failures: hb.failures, Until: hb.openedAt.Add(b.cfg.Cooldown)}
	}
}

func (b *breakers) success(host string) {
	if b == nil || b.cfg.MaxFailures <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	hb := b.get(host)
	hb.state = breakerClosed
	hb.failures = 0
}

func (b *breakers) failure(host string) {
	if b == nil || b.cfg.MaxFailures <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	hb := b.get(host)
	hb.failures++
	if hb.state == breakerProbing || hb.failures >= b.cfg.MaxFailures {
		hb.state = breakerOpen
		hb.openedAt = b.now()
	}
}

func (b *breakers) open(host string) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	hb, ok := b.hosts[host]
	return ok && hb.state != breakerClosed
}
