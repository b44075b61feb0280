package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(3 * time.Second)
	if c.Timeout != 0 {
		t.Fatalf("expected no whole-request timeout, got %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.TLSHandshakeTimeout != 3*time.Second {
		t.Fatalf("expected handshake bounded by connect timeout, got %v", tr.TLSHandshakeTimeout)
	}
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}

func TestNewFetchClients_DistinctTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	sc, dc := newFetchClients(cfg)
	if sc.PerRequestTimeout != DefaultSearchTimeout || dc.PerRequestTimeout != DefaultDocTimeout {
		t.Fatalf("unexpected timeouts %v %v", sc.PerRequestTimeout, dc.PerRequestTimeout)
	}
	if sc.HTTPClient != dc.HTTPClient {
		t.Fatalf("expected a shared transport")
	}
	if sc.Header.Get("X-Requested-With") != "XMLHttpRequest" || sc.Header.Get("Referer") != DefaultSearchURL {
		t.Fatalf("missing upstream headers: %v", sc.Header)
	}
	if sc.MaxAttempts != DefaultRetryAttempts || sc.BackoffFactor != DefaultBackoff {
		t.Fatalf("unexpected retry settings %d %v", sc.MaxAttempts, sc.BackoffFactor)
	}
}
