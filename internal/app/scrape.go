package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/qkbleads/internal/export"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// Report is everything a completed scrape produced.
type Report struct {
	Stats  RunStats
	Result registry.ResultSet
	Path   string

	// Deduped and DedupPath are set when the request asked for
	// identifier-level deduplication.
	Deduped   *registry.ResultSet
	DedupPath string

	// Extra lists additional files: XLSX, PDF summary and the manifest.
	Extra []string
}

// Display returns the rows and file to present to a user: the deduplicated
// export when one was written, otherwise the run export.
func (r *Report) Display() (registry.ResultSet, string) {
	if r.Deduped != nil {
		return *r.Deduped, r.DedupPath
	}
	return r.Result, r.Path
}

// Scrape runs the pipeline and writes every configured output: the CSV
// export, the _dedup export when requested, optional XLSX and PDF copies and
// the manifest sidecar. Failures writing the optional outputs are logged and
// do not fail the scrape.
func (a *App) Scrape(ctx context.Context, req RunRequest) (*Report, error) {
	rs, path, stats, err := a.run(ctx, req)
	if err != nil {
		return nil, err
	}
	rep := &Report{Stats: stats, Result: rs, Path: path}
	if req.Dedup {
		d, dpath, err := a.WriteDeduplicated(rs, req.City)
		if err != nil {
			return rep, err
		}
		rep.Deduped, rep.DedupPath = &d, dpath
	}

	logger := log.With().Str("run_id", stats.RunID).Logger()
	shown, shownPath := rep.Display()
	if a.cfg.ExportXLSX {
		p := export.WithExt(shownPath, ".xlsx")
		if err := export.WriteXLSXFile(p, shown); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("xlsx export failed")
		} else {
			a.metrics.ObserveExport("xlsx")
			rep.Extra = append(rep.Extra, p)
		}
	}
	if a.cfg.ExportPDF {
		p := export.WithExt(shownPath, ".pdf")
		if err := writeSummaryPDF(p, stats, req, shown); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("pdf summary failed")
		} else {
			a.metrics.ObserveExport("pdf")
			rep.Extra = append(rep.Extra, p)
		}
	}

	m := newManifest(stats, req, a.now())
	add := func(p, format string, rows int) {
		f, err := describeFile(p, format, rows)
		if err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("manifest digest failed")
			return
		}
		m.Files = append(m.Files, f)
	}
	add(rep.Path, "csv", rs.Len())
	if rep.Deduped != nil {
		add(rep.DedupPath, "csv", rep.Deduped.Len())
	}
	for _, p := range rep.Extra {
		add(p, formatOf(p), shown.Len())
	}
	mp := manifestPath(rep.Path)
	if err := writeManifest(mp, m); err != nil {
		logger.Warn().Err(err).Str("path", mp).Msg("manifest write failed")
	} else {
		rep.Extra = append(rep.Extra, mp)
	}
	return rep, nil
}

func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
