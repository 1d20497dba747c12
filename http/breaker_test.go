package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestBreakers_OpensAndProbes(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := newBreakers(BreakerConfig{MaxFailures: 2, Cooldown: time.Minute})
	b.now = func() time.Time { return now }

	b.failure("mirror")
	if err := b.allow("mirror"); err != nil {
		t.Fatalf("allow after one failure = %v", err)
	}
	b.failure("mirror")

	err := b.allow("mirror")
	var open *BreakerOpenError
	if !errors.As(err, &open) || !errors.Is(err, ErrMirrorUnavailable) {
		t.Fatalf("allow after two failures = %v, want *BreakerOpenError", err)
	}
	if open.Failures != 2 || !open.Until.Equal(now.Add(time.Minute)) {
		t.Errorf("open = %+v", open)
	}
	if err := b.allow("other"); err != nil {
		t.Errorf("other host rejected: %v", err)
	}

	now = now.Add(time.Minute)
	if err := b.allow("mirror"); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if err := b.allow("mirror"); err == nil {
		t.Error("second request admitted while probing")
	}

	b.failure("mirror")
	if err := b.allow("mirror"); err == nil {
		t.Error("failed probe did not reopen the breaker")
	}

	now = now.Add(time.Minute)
	if err := b.allow("mirror"); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.success("mirror")
	if b.open("mirror") {
		t.Error("successful probe left the breaker open")
	}
}

func TestBreakers_Disabled(t *testing.T) {
	b := newBreakers(BreakerConfig{})
	for i := 0; i < 10; i++ {
		b.failure("mirror")
	}
	if err := b.allow("mirror"); err != nil {
		t.Errorf("disabled breaker rejected: %v", err)
	}

	var none *breakers
	if err := none.allow("mirror"); err != nil {
		t.Errorf("nil breakers rejected: %v", err)
	}
}

func TestClient_BreakerStopsRequests(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClientWithOptions(
		WithMaxRetries(0),
		WithBreaker(BreakerConfig{MaxFailures: 2, Cooldown: time.Hour}),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := client.GetWithRetry(ctx, server.URL)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		resp.Body.Close()
	}

	_, err := client.GetWithRetry(ctx, server.URL)
	if !errors.Is(err, ErrMirrorUnavailable) {
		t.Fatalf("GetWithRetry() error = %v, want ErrMirrorUnavailable", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}
