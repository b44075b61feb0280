package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/qkbleads/internal/normalize"
	"github.com/hyperifyio/qkbleads/internal/parse"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// FileProvider loads a saved search response from disk for offline use. The
// file may hold any body shape the parser accepts. Records whose sector does
// not contain the keyword are skipped; records without a sector are kept.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, q Query) ([]registry.RawRecord, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	ct := "text/html"
	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		ct = "application/json"
	}
	recs, err := parse.Parse(b, ct)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(q.Keyword))
	out := make([]registry.RawRecord, 0, len(recs))
	for _, r := range recs {
		sector, ok := r[normalize.SrcSector].(string)
		if kw == "" || !ok || strings.Contains(strings.ToLower(sector), kw) {
			out = append(out, r)
		}
	}
	return out, nil
}
