// Package keepalive periodically requests the service's own public address
// so hosting platforms do not idle it.
package keepalive

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/qkbleads/internal/fetch"
	"github.com/hyperifyio/qkbleads/internal/metrics"
)

// DefaultInterval is used when Pinger.Interval is not positive.
const DefaultInterval = 10 * time.Minute

// Pinger requests URL every Interval until its context ends. Failures are
// logged and counted, never returned.
type Pinger struct {
	URL      string
	Interval time.Duration
	Client   *fetch.Client
	Metrics  *metrics.Metrics
}

// Run blocks until ctx is done. The first ping happens after one interval.
func (p *Pinger) Run(ctx context.Context) error {
	if p.URL == "" {
		return errors.New("keepalive url is empty")
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Info().Str("url", p.URL).Dur("interval", interval).Msg("keepalive started")
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("keepalive stopped")
			return nil
		case <-t.C:
			p.Ping(ctx)
		}
	}
}

// Ping performs a single request and reports whether it succeeded.
func (p *Pinger) Ping(ctx context.Context) bool {
	c := p.Client
	if c == nil {
		c = &fetch.Client{MaxAttempts: 1, PerRequestTimeout: 15 * time.Second}
	}
	_, _, err := c.Get(ctx, p.URL)
	p.Metrics.ObservePing(err)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("url", p.URL).Msg("keepalive ping failed")
		}
		return false
	}
	log.Debug().Str("url", p.URL).Msg("keepalive ping ok")
	return true
}
