package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const policyContextKey contextKey = "gosolc.cache.policy"

// DefaultMaxAge is how long a cached release listing is served without a refresh.
const DefaultMaxAge = time.Hour

// Policy controls how cached release listings are used for one invocation.
type Policy struct {
	// MaxAge is the maximum age for cached entries.
	MaxAge time.Duration

	// Refresh ignores the cached entry and fetches a new one.
	Refresh bool

	// Offline never touches the network; a cached entry of any age is used.
	Offline bool

	// SessionID identifies the invocation in logs and request headers.
	SessionID string
}

// NewPolicy creates a policy with defaults and a fresh session ID.
func NewPolicy() *Policy {
	return &Policy{
		MaxAge:    DefaultMaxAge,
		SessionID: uuid.New().String(),
	}
}

// Clone creates a copy of the policy.
func (p *Policy) Clone() *Policy {
	c := *p
	return &c
}

// WithPolicy adds the policy to the Go context.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, policyContextKey, p)
}

// PolicyFromContext returns the policy carried by ctx, or a default policy.
func PolicyFromContext(ctx context.Context) *Policy {
	if p, ok := LookupPolicy(ctx); ok {
		return p
	}
	return NewPolicy()
}

// LookupPolicy returns the policy carried by ctx, if any.
func LookupPolicy(ctx context.Context) (*Policy, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(policyContextKey).(*Policy)
	return p, ok
}
