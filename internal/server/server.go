// Package server exposes the scrape pipeline through a small HTML front end:
// a form, a result page with a preview, and downloads of the written exports.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// PreviewRows is the number of rows shown on the result page.
const PreviewRows = 25

// maxFormBytes bounds the scrape form body.
const maxFormBytes = 1 << 20

// Scraper runs one scrape. *app.App satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, req app.RunRequest) (*app.Report, error)
	DefaultRequest() app.RunRequest
	Config() app.Config
}

// Options tunes a Server. Zero values are usable.
type Options struct {
	Metrics *metrics.Metrics
	// MaxConcurrentScrapes limits scrapes running at once; further
	// submissions get 503. Zero or less means no limit.
	MaxConcurrentScrapes int64
	// ScrapeTimeout bounds a single scrape. Zero means no bound.
	ScrapeTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	scraper Scraper
	metrics *metrics.Metrics
	slots   *semaphore.Weighted
	timeout time.Duration
	pages   map[string]*template.Template
	router  chi.Router
}

// New builds a Server around s.
func New(s Scraper, opts Options) *Server {
	srv := &Server{
		scraper: s,
		metrics: opts.Metrics,
		timeout: opts.ScrapeTimeout,
		pages:   parsePages("index.html", "result.html", "error.html"),
	}
	if opts.MaxConcurrentScrapes > 0 {
		srv.slots = semaphore.NewWeighted(opts.MaxConcurrentScrapes)
	}
	srv.router = srv.routes()
	return srv
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(accessLog(s.metrics))
	r.Use(recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/scrape", s.handleScrape)
	r.Get("/download", s.handleDownload)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

func parsePages(names ...string) map[string]*template.Template {
	funcs := template.FuncMap{"base": filepath.Base}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}
