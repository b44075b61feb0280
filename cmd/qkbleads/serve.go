package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/keepalive"
	"github.com/hyperifyio/qkbleads/internal/metrics"
	"github.com/hyperifyio/qkbleads/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	listen            string
	keepAliveURL      string
	keepAliveInterval time.Duration
	maxScrapes        int64
	scrapeTimeout     time.Duration
}

func newServeCmd(c *cli) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			set := cmd.Flags().Changed
			if set("listen") {
				cfg.ListenAddr = f.listen
			}
			if set("keepalive.url") {
				cfg.KeepAliveURL = f.keepAliveURL
			}
			if set("keepalive.interval") {
				cfg.KeepAliveInterval = f.keepAliveInterval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.listen, "listen", app.DefaultListenAddr, "Listen address")
	fl.StringVar(&f.keepAliveURL, "keepalive.url", "", "Public URL to ping periodically; empty disables keep-alive")
	fl.DurationVar(&f.keepAliveInterval, "keepalive.interval", app.DefaultKeepAliveInterval, "Keep-alive ping interval")
	fl.Int64Var(&f.maxScrapes, "max-scrapes", 1, "Scrapes allowed to run at once; 0 means unlimited")
	fl.DurationVar(&f.scrapeTimeout, "scrape-timeout", 0, "Upper bound for one scrape; 0 means none")
	return cmd
}

func runServe(ctx context.Context, cfg app.Config, f *serveFlags) error {
	m := metrics.New()
	a, err := app.New(cfg, app.Options{Metrics: m})
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(a, server.Options{Metrics: m, MaxConcurrentScrapes: f.maxScrapes, ScrapeTimeout: f.scrapeTimeout}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Str("version", app.BuildVersion).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if target := keepAliveTarget(cfg.KeepAliveURL); target != "" {
		p := &keepalive.Pinger{URL: target, Interval: cfg.KeepAliveInterval, Metrics: m}
		g.Go(func() error { return p.Run(gctx) })
	} else {
		log.Debug().Msg("keepalive disabled")
	}
	return g.Wait()
}

// keepAliveTarget turns a configured public base URL into the address to
// ping. A bare host gets the health endpoint appended.
func keepAliveTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/healthz"
	}
	return u.String()
}
