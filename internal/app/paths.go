package app

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/qkbleads/internal/export"
)

// exportPath returns where a run's export for city is written.
func exportPath(cfg Config, city string, at time.Time, dedup bool, ext string) string {
	root := strings.TrimSpace(cfg.ExportDir)
	if root == "" {
		root = DefaultExportDir
	}
	name := export.FileName(city, at, ext)
	if dedup {
		name = export.DedupFileName(city, at, ext)
	}
	return filepath.Join(root, name)
}

// manifestPath returns the sidecar JSON path next to an export.
func manifestPath(exportPath string) string {
	return exportPath + ".manifest.json"
}
