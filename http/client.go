// Package http provides the HTTP client used to talk to compiler mirrors.
//
// It wraps the standard http.Client with a user agent, retries with
// exponential backoff, a per-host circuit breaker, request metrics,
// optional tracing and HTTP/2 or HTTP/3 transports.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/willibrandon/gosolc/auth"
	"github.com/willibrandon/gosolc/cache"
	"github.com/willibrandon/gosolc/observability"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "gosolc/dev"

	// SessionHeader carries the invocation's session ID on every request.
	SessionHeader = "X-Gosolc-Session-Id"
)

// Client wraps http.Client with gosolc-specific configuration
type Client struct {
	httpClient  *http.Client
	userAgent   string
	timeout     time.Duration
	retryConfig *RetryConfig
	breakers    *breakers
	auth        auth.Authenticator
	logger      observability.Logger
}

// Config holds HTTP client configuration
type Config struct {
	Timeout       time.Duration
	UserAgent     string
	Transport     TransportConfig
	RetryConfig   *RetryConfig
	Breaker       BreakerConfig
	Authenticator auth.Authenticator   // nil sends anonymous requests
	Logger        observability.Logger // nil uses a null logger
	EnableTracing bool                 // wrap the transport with OpenTelemetry spans
}

// DefaultConfig returns a client configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		Transport:   DefaultTransportConfig(),
		RetryConfig: DefaultRetryConfig(),
		Breaker:     DefaultBreakerConfig(),
	}
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	transport := NewTransport(cfg.Transport)
	if cfg.EnableTracing {
		transport = observability.NewHTTPTracingTransport(transport, observability.TracerName+"/http")
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		timeout:     cfg.Timeout,
		retryConfig: cfg.RetryConfig,
		breakers:    newBreakers(cfg.Breaker),
		auth:        cfg.Authenticator,
		logger:      observability.OrNull(cfg.Logger),
	}
}

// prepare attaches ctx and the standard headers to a copy of req.
func (c *Client) prepare(ctx context.Context, req *http.Request) (*http.Request, error) {
	r := req.Clone(ctx)
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", c.userAgent)
	}
	if p, ok := cache.LookupPolicy(ctx); ok && p.SessionID != "" {
		r.Header.Set(SessionHeader, p.SessionID)
	}
	if c.auth != nil {
		if err := c.auth.Authenticate(r); err != nil {
			return nil, fmt.Errorf("authenticate %s: %w", r.URL.Host, err)
		}
	}
	return r, nil
}

// send performs one round trip and records metrics.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnContext(ctx, "HTTP {Method} {URL} failed after {Duration}ms: {Error}",
			req.Method, req.URL.String(), duration.Milliseconds(), err)
		observability.HTTPRequestsTotal.WithLabelValues(req.Method, "error", req.URL.Host).Inc()
		return nil, err
	}

	c.logger.DebugContext(ctx, "HTTP {Method} {URL} → {StatusCode} {Protocol} ({Duration}ms)",
		req.Method, req.URL.String(), resp.StatusCode, ProtocolVersion(resp), duration.Milliseconds())
	observability.HTTPRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode), req.URL.Host).Inc()
	observability.HTTPRequestDuration.WithLabelValues(req.Method, req.URL.Host).Observe(duration.Seconds())
	return resp, nil
}

// Do executes an HTTP request once.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	r, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "HTTP {Method} {URL}", r.Method, r.URL.String())
	return c.send(ctx, r)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(ctx, req)
}

// GetWithRetry performs a GET request with retry logic
func (c *Client) GetWithRetry(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.DoWithRetry(ctx, req)
}

// DoWithRetry executes an HTTP request, retrying network errors and
// retriable status codes. When retries run out on a retriable status the
// last response is returned to the caller.
func (c *Client) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.logger.DebugContext(ctx, "HTTP {Method} {URL} with retry (max={MaxRetries})",
		req.Method, req.URL.String(), c.retryConfig.MaxRetries)

	var lastErr error
	var resp *http.Response
	host := req.URL.Host

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if err := c.breakers.allow(host); err != nil {
			c.logger.WarnContext(ctx, "HTTP {Method} {URL} not sent: {Error}", req.Method, req.URL.String(), err)
			return nil, err
		}
		r, err := c.prepare(ctx, req)
		if err != nil {
			return nil, err
		}
		resp, lastErr = c.send(ctx, r)
		if lastErr != nil || resp.StatusCode >= 500 {
			c.breakers.failure(host)
		} else {
			c.breakers.success(host)
		}

		if lastErr == nil && !IsRetriableStatus(resp.StatusCode) {
			if attempt > 0 {
				c.logger.InfoContext(ctx, "HTTP {Method} {URL} succeeded after {Attempt} retries",
					req.Method, req.URL.String(), attempt)
			}
			return resp, nil
		}

		if lastErr != nil && !IsRetriable(lastErr) {
			c.logger.WarnContext(ctx, "HTTP {Method} {URL} failed with non-retriable error: {Error}",
				req.Method, req.URL.String(), lastErr)
			return nil, lastErr
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		var backoff time.Duration
		if resp != nil {
			backoff = ParseRetryAfter(resp.Header.Get("Retry-After"))
			_ = resp.Body.Close()
			resp = nil
		}
		if backoff == 0 {
			backoff = c.retryConfig.CalculateBackoff(attempt)
		}

		observability.RecordRetry(ctx, attempt+1, lastErr)
		c.logger.DebugContext(ctx, "HTTP {Method} {URL} retry {Attempt}/{MaxRetries} after {Backoff}ms",
			req.Method, req.URL.String(), attempt+1, c.retryConfig.MaxRetries, backoff.Milliseconds())

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		c.logger.ErrorContext(ctx, "HTTP {Method} {URL} failed after {MaxRetries} retries: {Error}",
			req.Method, req.URL.String(), c.retryConfig.MaxRetries, lastErr)
		return nil, fmt.Errorf("after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
	}
	return resp, nil
}

// StatusError reports an unexpected HTTP response status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// CheckStatus returns a *StatusError and closes the body unless resp is 2xx.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_ = resp.Body.Close()
	return &StatusError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode}
}

// Option is a functional option for configuring the client
type Option func(*Config)

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = timeout
	}
}

// WithUserAgent sets the user agent string
func WithUserAgent(ua string) Option {
	return func(cfg *Config) {
		cfg.UserAgent = ua
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(l observability.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// WithMaxRetries sets the maximum number of retries
func WithMaxRetries(n int) Option {
	return func(cfg *Config) {
		if cfg.RetryConfig == nil {
			cfg.RetryConfig = DefaultRetryConfig()
		}
		cfg.RetryConfig.MaxRetries = n
	}
}

// WithAuthenticator authenticates every request with a.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(cfg *Config) {
		cfg.Authenticator = a
	}
}

// WithBreaker sets when a failing mirror host stops receiving requests
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Config) {
		c.Breaker = cfg
	}
}

// WithHTTP3 enables HTTP/3 with fallback to HTTP/2 and HTTP/1.1
func WithHTTP3(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Transport.EnableHTTP3 = enabled
	}
}

// WithTracing wraps the transport with OpenTelemetry spans
func WithTracing(enabled bool) Option {
	return func(cfg *Config) {
		cfg.EnableTracing = enabled
	}
}

// NewClientWithOptions creates a client with functional options
func NewClientWithOptions(opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewClient(cfg)
}
