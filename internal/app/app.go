// Package app wires configuration, transports and the scrape pipeline
// together. App.Run is the search orchestrator used by both the CLI and the
// web server.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/qkbleads/internal/aggregate"
	"github.com/hyperifyio/qkbleads/internal/cache"
	"github.com/hyperifyio/qkbleads/internal/contact"
	"github.com/hyperifyio/qkbleads/internal/export"
	"github.com/hyperifyio/qkbleads/internal/metrics"
	"github.com/hyperifyio/qkbleads/internal/normalize"
	"github.com/hyperifyio/qkbleads/internal/registry"
	"github.com/hyperifyio/qkbleads/internal/search"
	sel "github.com/hyperifyio/qkbleads/internal/select"
)

// ContactLookup resolves contact details for a subject identifier. It has no
// failure mode; misses are empty Contacts.
type ContactLookup interface {
	Lookup(ctx context.Context, nipt string) registry.Contact
}

// Options injects collaborators. Zero fields get production defaults.
type Options struct {
	Provider search.Provider
	Contacts ContactLookup
	Metrics  *metrics.Metrics
	// Sleep pauses between keywords. It should return early when ctx ends.
	Sleep func(ctx context.Context, d time.Duration)
	Now   func() time.Time
}

type App struct {
	cfg      Config
	provider search.Provider
	contacts ContactLookup
	metrics  *metrics.Metrics
	sleep    func(context.Context, time.Duration)
	now      func() time.Time
}

// RunRequest describes one scrape run.
type RunRequest struct {
	Keywords    []string
	City        string
	Region      string
	Delay       time.Duration
	Contacts    bool
	MaxContacts int
	// Dedup also writes the identifier-level deduplicated export.
	Dedup bool
}

// RunStats summarizes a run for logs and the manifest.
type RunStats struct {
	RunID           string    `json:"run_id"`
	Keywords        int       `json:"keywords"`
	FailedKeywords  int       `json:"failed_keywords"`
	Rows            int       `json:"rows"`
	ContactAttempts int       `json:"contact_attempts"`
	ContactsFound   int       `json:"contacts_found"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

var errNoKeywords = errors.New("no keywords to search")

// New builds an App from cfg. Providers and contact lookup are created from
// cfg unless opts supplies them.
func New(cfg Config, opts Options) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:      cfg,
		provider: opts.Provider,
		contacts: opts.Contacts,
		metrics:  opts.Metrics,
		sleep:    opts.Sleep,
		now:      opts.Now,
	}
	if a.sleep == nil {
		a.sleep = pause
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.provider == nil {
		a.provider = NewProvider(cfg)
	}
	if a.contacts == nil {
		_, docClient := newFetchClients(cfg)
		a.contacts = &contact.Fetcher{
			Client:      docClient,
			URL:         cfg.DocURL,
			Cache:       openDocCache(cfg),
			CacheMaxAge: cfg.CacheMaxAge,
		}
	}
	return a, nil
}

// NewProvider returns the search provider cfg selects: the offline file
// provider when a search file is set, otherwise the live registry.
func NewProvider(cfg Config) search.Provider {
	if strings.TrimSpace(cfg.FileSearchPath) != "" {
		return &search.FileProvider{Path: cfg.FileSearchPath}
	}
	searchClient, _ := newFetchClients(cfg)
	return &search.QKB{URL: cfg.SearchURL, Client: searchClient}
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// DefaultRequest returns a RunRequest filled from the configured run
// defaults.
func (a *App) DefaultRequest() RunRequest {
	return RunRequest{
		Keywords:    append([]string(nil), a.cfg.Keywords...),
		City:        a.cfg.City,
		Region:      a.cfg.Region,
		Delay:       a.cfg.Delay,
		Contacts:    a.cfg.Contacts,
		MaxContacts: a.cfg.MaxContacts,
		Dedup:       a.cfg.Dedup,
	}
}

func openDocCache(cfg Config) *cache.DocCache {
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return nil
	}
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
		} else if n > 0 {
			log.Info().Int("removed", n).Msg("purged stale document cache entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxCount > 0 {
		if n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache limit enforcement failed")
		} else if n > 0 {
			log.Info().Int("removed", n).Msg("evicted document cache entries over limit")
		}
	}
	return &cache.DocCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
}

// Run searches every keyword in order, normalizes the results, removes
// repeated (identifier, keyword) pairs, optionally fetches contacts and
// writes the CSV export. A failed keyword becomes an error row; only an
// export write failure fails the run.
func (a *App) Run(ctx context.Context, req RunRequest) (registry.ResultSet, string, error) {
	rs, path, _, err := a.run(ctx, req)
	return rs, path, err
}

func (a *App) run(ctx context.Context, req RunRequest) (registry.ResultSet, string, RunStats, error) {
	rs, stats, err := a.collect(ctx, req)
	if err != nil {
		return registry.ResultSet{}, "", stats, err
	}
	path := exportPath(a.cfg, req.City, stats.FinishedAt, false, ".csv")
	if err := export.WriteCSVFile(path, rs); err != nil {
		return rs, "", stats, fmt.Errorf("write export: %w", err)
	}
	a.metrics.ObserveExport("csv")
	log.Info().Str("run_id", stats.RunID).Str("path", path).Int("rows", rs.Len()).Msg("export written")
	return rs, path, stats, nil
}

// collect runs the pipeline without writing anything.
func (a *App) collect(ctx context.Context, req RunRequest) (registry.ResultSet, RunStats, error) {
	if len(req.Keywords) == 0 {
		return registry.ResultSet{}, RunStats{}, errNoKeywords
	}
	if req.Delay < 0 {
		req.Delay = 0
	}
	done := a.metrics.StartRun()
	defer done()

	stats := RunStats{RunID: uuid.NewString(), Keywords: len(req.Keywords), StartedAt: a.now().UTC()}
	logger := log.With().Str("run_id", stats.RunID).Logger()
	logger.Info().
		Int("keywords", len(req.Keywords)).
		Str("city", req.City).
		Str("region", req.Region).
		Bool("contacts", req.Contacts).
		Msg("run started")

	groups := make([][]registry.Row, 0, len(req.Keywords))
	for i, kw := range req.Keywords {
		if i > 0 && req.Delay > 0 {
			a.sleep(ctx, req.Delay)
		}
		rows, err := a.searchKeyword(ctx, kw, req)
		if err != nil {
			stats.FailedKeywords++
			a.metrics.ObserveSearch("error")
			logger.Warn().Err(err).Str("keyword", kw).Msg("search failed")
			groups = append(groups, []registry.Row{registry.ErrorRow(kw, err)})
			continue
		}
		logger.Debug().Str("keyword", kw).Int("rows", len(rows)).Msg("search done")
		groups = append(groups, rows)
	}

	rs := registry.ResultSet{Rows: aggregate.MergeAndDedup(groups), Contacts: req.Contacts}
	if req.Contacts {
		stats.ContactAttempts, stats.ContactsFound = a.fillContacts(ctx, rs.Rows, req.MaxContacts, logger)
	}
	stats.Rows = rs.Len()
	stats.FinishedAt = a.now().UTC()
	a.metrics.AddRows(stats.Rows)
	logger.Info().
		Int("rows", stats.Rows).
		Int("failed_keywords", stats.FailedKeywords).
		Int("contact_attempts", stats.ContactAttempts).
		Int("contacts_found", stats.ContactsFound).
		Dur("elapsed", stats.FinishedAt.Sub(stats.StartedAt)).
		Msg("run finished")
	return rs, stats, nil
}

func (a *App) searchKeyword(ctx context.Context, kw string, req RunRequest) ([]registry.Row, error) {
	recs, err := a.provider.Search(ctx, search.Query{Keyword: kw, City: req.City, Region: req.Region})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		a.metrics.ObserveSearch("empty")
	} else {
		a.metrics.ObserveSearch("ok")
	}
	return normalize.Normalize(recs, kw), nil
}

// fillContacts looks up contacts for the planned rows in place. Rows past
// the cap keep empty contacts.
func (a *App) fillContacts(ctx context.Context, rows []registry.Row, maxContacts int, logger zerolog.Logger) (attempts, found int) {
	for _, i := range sel.Plan(rows, sel.Options{MaxTotal: maxContacts}) {
		c := a.contacts.Lookup(ctx, rows[i].Identifier())
		rows[i].Contact = c
		attempts++
		if c.Found() {
			found++
		}
		a.metrics.ObserveContactFetch(c.Found())
		logger.Debug().Str("nipt", rows[i].Identifier()).Bool("found", c.Found()).Msg("contact lookup")
	}
	return attempts, found
}

// WriteDeduplicated collapses rs to one row per identifier and writes it as
// the _dedup export for city. The first export is left untouched.
func (a *App) WriteDeduplicated(rs registry.ResultSet, city string) (registry.ResultSet, string, error) {
	out := registry.ResultSet{Rows: aggregate.DedupByIdentifier(rs.Rows), Contacts: rs.Contacts}
	path := exportPath(a.cfg, city, a.now(), true, ".csv")
	if err := export.WriteCSVFile(path, out); err != nil {
		return out, "", fmt.Errorf("write dedup export: %w", err)
	}
	a.metrics.ObserveExport("csv")
	log.Info().Str("path", path).Int("rows", out.Len()).Msg("dedup export written")
	return out, path, nil
}

func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
