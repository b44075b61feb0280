package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRetryStatuses are the response codes retried with backoff.
var DefaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
}

// Client wraps http.Client and provides default headers, timeouts and bounded
// retry with exponential backoff on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Header is sent with every request. UserAgent wins over a User-Agent here.
	Header http.Header
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt, including reading the body.
	PerRequestTimeout time.Duration
	// BackoffFactor is the base delay; attempt n waits BackoffFactor*2^(n-1).
	BackoffFactor time.Duration
	// RetryStatuses overrides DefaultRetryStatuses when non-nil.
	RetryStatuses []int
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes caps the response body. Zero means unlimited.
	MaxBodyBytes int64

	sleep func(time.Duration)
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET and returns the body and content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	return c.do(ctx, http.MethodGet, rawURL, "", "")
}

// PostForm issues a url-encoded POST and returns the body and content type.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, string, error) {
	return c.do(ctx, http.MethodPost, rawURL, form.Encode(), "application/x-www-form-urlencoded; charset=UTF-8")
}

func (c *Client) do(ctx context.Context, method, rawURL, body, contentType string) ([]byte, string, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := c.wait(ctx, i); err != nil {
				break
			}
		}
		b, ct, err := c.tryOnce(ctx, method, rawURL, body, contentType)
		if err == nil {
			return b, ct, nil
		}
		lastErr = err
		if !c.isTransient(err) || ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

// wait pauses before retry attempt n. It returns ctx.Err() when ctx ends
// first.
func (c *Client) wait(ctx context.Context, attempt int) error {
	if c.BackoffFactor <= 0 {
		return ctx.Err()
	}
	d := c.BackoffFactor << (attempt - 1)
	if c.sleep != nil {
		c.sleep(d)
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) tryOnce(ctx context.Context, method, rawURL, body, contentType string) ([]byte, string, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, "", &StatusError{Code: resp.StatusCode}
	}
	var r io.Reader = resp.Body
	if c.MaxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, c.MaxBodyBytes)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func (c *Client) isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		statuses := c.RetryStatuses
		if statuses == nil {
			statuses = DefaultRetryStatuses
		}
		for _, s := range statuses {
			if se.Code == s {
				return true
			}
		}
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
