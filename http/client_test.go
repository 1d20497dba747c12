package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/willibrandon/gosolc/auth"
	"github.com/willibrandon/gosolc/cache"
	"github.com/willibrandon/gosolc/observability"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"nil config uses defaults", nil, DefaultUserAgent},
		{"empty user agent uses default", &Config{}, DefaultUserAgent},
		{"custom user agent", &Config{UserAgent: "custom/1.0"}, "custom/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.cfg)
			if client.userAgent != tt.want {
				t.Errorf("userAgent = %q, want %q", client.userAgent, tt.want)
			}
		})
	}
}

func TestClient_Get_Headers(t *testing.T) {
	var ua, session string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		session = r.Header.Get(SessionHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	policy := cache.NewPolicy()
	ctx := cache.WithPolicy(context.Background(), policy)

	resp, err := NewClient(nil).Get(ctx, server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	if ua != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", ua, DefaultUserAgent)
	}
	if session != policy.SessionID {
		t.Errorf("%s = %q, want %q", SessionHeader, session, policy.SessionID)
	}
}

func TestClient_Get_NoPolicyNoSessionHeader(t *testing.T) {
	var session string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = r.Header.Get(SessionHeader)
	}))
	defer server.Close()

	resp, err := NewClient(nil).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	if session != "" {
		t.Errorf("%s = %q, want empty", SessionHeader, session)
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithOptions(WithTimeout(50 * time.Millisecond))
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	before, _ := observability.GetCounterValue(observability.HTTPRequestsTotal, "GET", "418", host)

	resp, err := NewClient(nil).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	after, _ := observability.GetCounterValue(observability.HTTPRequestsTotal, "GET", "418", host)
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

func TestCheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	client := NewClient(nil)

	resp, err := client.Get(context.Background(), server.URL+"/ok")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := CheckStatus(resp); err != nil {
		t.Errorf("CheckStatus(200) = %v", err)
	}
	_ = resp.Body.Close()

	resp, err = client.Get(context.Background(), server.URL+"/missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	err = CheckStatus(resp)
	var sErr *StatusError
	if !errors.As(err, &sErr) {
		t.Fatalf("CheckStatus(404) = %v, want *StatusError", err)
	}
	if sErr.StatusCode != http.StatusNotFound || !strings.HasSuffix(sErr.URL, "/missing") {
		t.Errorf("StatusError = %+v", sErr)
	}
}

func TestFunctionalOptions(t *testing.T) {
	client := NewClientWithOptions(
		WithTimeout(5*time.Second),
		WithUserAgent("test/1.0"),
		WithMaxRetries(7),
		WithLogger(observability.NewNullLogger()),
	)

	if client.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", client.timeout)
	}
	if client.userAgent != "test/1.0" {
		t.Errorf("userAgent = %q, want test/1.0", client.userAgent)
	}
	if client.retryConfig.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", client.retryConfig.MaxRetries)
	}
}

func TestProgressReader(t *testing.T) {
	var calls int
	var last int64
	pr := NewProgressReader(strings.NewReader(strings.Repeat("x", 10_000)), 10_000, func(read, total int64) {
		calls++
		last = read
		if total != 10_000 {
			t.Errorf("total = %d, want 10000", total)
		}
	})

	n, err := io.Copy(io.Discard, pr)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if n != 10_000 || pr.BytesRead() != 10_000 || last != 10_000 {
		t.Errorf("copied %d, BytesRead %d, last report %d", n, pr.BytesRead(), last)
	}
	if calls == 0 {
		t.Error("progress never reported")
	}

	// nil callback is a pass-through
	if _, err := io.Copy(io.Discard, NewProgressReader(strings.NewReader("abc"), -1, nil)); err != nil {
		t.Errorf("Copy() with nil callback error = %v", err)
	}
}

type failingAuth struct{}

func (failingAuth) Authenticate(*http.Request) error { return errors.New("keychain locked") }

func TestClient_Authenticator(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hosts := auth.NewHosts()
	hosts.Add(server.URL, auth.NewBearerAuthenticator("tok"))

	resp, err := NewClientWithOptions(WithAuthenticator(hosts), WithMaxRetries(0)).GetWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetWithRetry() error = %v", err)
	}
	_ = resp.Body.Close()
	if got != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
	}

	_, err = NewClientWithOptions(WithAuthenticator(failingAuth{})).Get(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "keychain locked") {
		t.Errorf("Get() error = %v, want authenticator failure", err)
	}
}
