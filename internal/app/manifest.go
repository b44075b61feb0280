package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"time"
)

// manifestFile describes one file written by a run.
type manifestFile struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Rows   int    `json:"rows"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// manifestRequest records the parameters a run was started with.
type manifestRequest struct {
	City         string   `json:"city"`
	Region       string   `json:"region,omitempty"`
	Keywords     []string `json:"keywords"`
	DelaySeconds float64  `json:"delay_seconds"`
	Contacts     bool     `json:"contacts"`
	MaxContacts  int      `json:"max_contacts"`
	Dedup        bool     `json:"dedup"`
}

type manifestBuild struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// runManifest is the machine-readable sidecar written next to an export.
type runManifest struct {
	Run         RunStats        `json:"run"`
	Request     manifestRequest `json:"request"`
	Files       []manifestFile  `json:"files"`
	Build       manifestBuild   `json:"build"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func newManifest(stats RunStats, req RunRequest, at time.Time) runManifest {
	return runManifest{
		Run: stats,
		Request: manifestRequest{
			City:         req.City,
			Region:       req.Region,
			Keywords:     req.Keywords,
			DelaySeconds: req.Delay.Seconds(),
			Contacts:     req.Contacts,
			MaxContacts:  req.MaxContacts,
			Dedup:        req.Dedup,
		},
		Build:       manifestBuild{Version: BuildVersion, Commit: BuildCommit, Date: BuildDate},
		GeneratedAt: at.UTC(),
	}
}

// describeFile digests a written file for the manifest.
func describeFile(path, format string, rows int) (manifestFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return manifestFile{}, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return manifestFile{}, err
	}
	return manifestFile{Path: path, Format: format, Rows: rows, Bytes: n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

// marshalManifestJSON encodes the sidecar manifest.
func marshalManifestJSON(m runManifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func writeManifest(path string, m runManifest) error {
	b, err := marshalManifestJSON(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
