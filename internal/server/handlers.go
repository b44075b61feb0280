package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/export"
	"github.com/hyperifyio/qkbleads/internal/validate"
)

type indexData struct {
	City           string
	Region         string
	KeywordPreview string
	Delay          string
	Contacts       bool
	MaxContacts    int
	Dedup          bool
}

type resultData struct {
	RunID        string
	Rows         int
	Failed       int
	Path         string
	Size         int64
	Extra        []string
	PreviewLimit int
	Columns      []string
	Preview      [][]string
}

type errorData struct {
	Message string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	def := s.scraper.DefaultRequest()
	s.render(w, r, http.StatusOK, "index.html", indexData{
		City:           def.City,
		Region:         def.Region,
		KeywordPreview: app.KeywordPreview(app.DefaultKeywordPreview),
		Delay:          strconv.FormatFloat(def.Delay.Seconds(), 'f', -1, 64),
		Contacts:       def.Contacts,
		MaxContacts:    def.MaxContacts,
		Dedup:          def.Dedup,
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	req, err := parseScrapeForm(r, s.scraper.DefaultRequest())
	if err != nil {
		msg := "invalid request"
		var verr *validate.Error
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		s.render(w, r, http.StatusBadRequest, "error.html", errorData{Message: msg})
		return
	}

	if s.slots != nil {
		if !s.slots.TryAcquire(1) {
			s.render(w, r, http.StatusServiceUnavailable, "error.html", errorData{Message: "A scrape is already running. Try again later."})
			return
		}
		defer s.slots.Release(1)
	}

	// The run outlives a dropped client connection so the export still lands.
	ctx := context.WithoutCancel(r.Context())
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	rep, err := s.scraper.Scrape(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("scrape failed")
		s.render(w, r, http.StatusInternalServerError, "error.html", errorData{Message: "scrape failed: " + err.Error()})
		return
	}

	shown, path := rep.Display()
	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	cols := shown.Columns()
	n := min(PreviewRows, shown.Len())
	preview := make([][]string, 0, n)
	for _, row := range shown.Rows[:n] {
		preview = append(preview, row.Record(cols))
	}
	s.render(w, r, http.StatusOK, "result.html", resultData{
		RunID:        rep.Stats.RunID,
		Rows:         shown.Len(),
		Failed:       rep.Stats.FailedKeywords,
		Path:         path,
		Size:         size,
		Extra:        rep.Extra,
		PreviewLimit: PreviewRows,
		Columns:      cols,
		Preview:      preview,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, err := export.ResolveWithin(s.scraper.Config().ExportDir, r.URL.Query().Get("path"))
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	name := filepath.Base(path)
	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, fi.ModTime(), f)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": app.BuildVersion})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Str("request_id", RequestID(r.Context())).Msg("render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func contentTypeFor(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
