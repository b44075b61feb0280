package app

import (
	"net"
	"net/http"
	"time"

	"github.com/hyperifyio/qkbleads/internal/fetch"
)

// newHTTPClient returns a client whose dial is bounded by connectTimeout.
// Read timeouts are applied per request by fetch.Client.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// upstreamHeader carries the headers the registry expects from its own
// search page.
func upstreamHeader(searchURL string) http.Header {
	h := http.Header{}
	h.Set("Origin", DefaultOrigin)
	h.Set("Referer", searchURL)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Accept", "application/json, text/javascript, text/html, */*; q=0.01")
	return h
}

// newFetchClients returns the clients for the search and document endpoints.
// They share a transport but differ in read timeout.
func newFetchClients(cfg Config) (searchClient, docClient *fetch.Client) {
	hc := newHTTPClient(cfg.ConnectTimeout)
	base := fetch.Client{
		HTTPClient:    hc,
		UserAgent:     cfg.UserAgent,
		Header:        upstreamHeader(cfg.SearchURL),
		MaxAttempts:   cfg.RetryAttempts,
		BackoffFactor: cfg.Backoff,
	}
	sc, dc := base, base
	sc.PerRequestTimeout = cfg.SearchTimeout
	dc.PerRequestTimeout = cfg.DocTimeout
	return &sc, &dc
}
