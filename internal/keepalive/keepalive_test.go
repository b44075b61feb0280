package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/qkbleads/internal/fetch"
	"github.com/hyperifyio/qkbleads/internal/metrics"
)

func TestPinger_RunPingsUntilCancelled(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pinger{URL: srv.URL, Interval: 10 * time.Millisecond, Client: &fetch.Client{MaxAttempts: 1}}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&hits) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pinger did not stop after cancel")
	}
	if atomic.LoadInt32(&hits) < 2 {
		t.Fatalf("expected at least 2 pings, got %d", hits)
	}
}

func TestPinger_FailuresAreSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := metrics.New()
	p := &Pinger{URL: srv.URL, Client: &fetch.Client{MaxAttempts: 1}, Metrics: m}
	if p.Ping(context.Background()) {
		t.Fatalf("expected failed ping")
	}
	srv.Close()
	if p.Ping(context.Background()) {
		t.Fatalf("expected failed ping against closed server")
	}
}

func TestPinger_RequiresURL(t *testing.T) {
	if err := (&Pinger{}).Run(context.Background()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
