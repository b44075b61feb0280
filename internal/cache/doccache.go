// Package cache stores fetched subject documents on disk so repeated runs do
// not hit the registry for the same identifier twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the metadata kept next to each cached body.
type Entry struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	SavedAt     time.Time `json:"saved_at"`
}

// DocCache stores bodies on disk as <hash>.meta.json and <hash>.body where
// hash is sha256(key). Eviction is done separately by PurgeByAge and
// EnforceLimits.
type DocCache struct {
	Dir string
	// StrictPerms restricts the directory to 0700 and files to 0600.
	StrictPerms bool
}

func (c *DocCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *DocCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *DocCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		return os.Chmod(c.Dir, c.dirMode())
	}
	return nil
}

func (c *DocCache) hash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func (c *DocCache) metaPath(h string) string { return filepath.Join(c.Dir, h+".meta.json") }
func (c *DocCache) bodyPath(h string) string { return filepath.Join(c.Dir, h+".body") }

// LoadMeta returns entry metadata if present.
func (c *DocCache) LoadMeta(_ context.Context, key string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(c.hash(key)))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadBody returns the cached body if present and marks it recently used.
func (c *DocCache) LoadBody(_ context.Context, key string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	p := c.bodyPath(c.hash(key))
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, nil
}

// Get returns a cached body no older than maxAge. A zero maxAge accepts any
// age. The boolean is false on a miss.
func (c *DocCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, string, bool) {
	meta, err := c.LoadMeta(ctx, key)
	if err != nil {
		return nil, "", false
	}
	if maxAge > 0 && time.Since(meta.SavedAt) > maxAge {
		return nil, "", false
	}
	body, err := c.LoadBody(ctx, key)
	if err != nil {
		return nil, "", false
	}
	return body, meta.ContentType, true
}

// Save stores a new cache entry. The body is written before the metadata so
// a reader never sees metadata without its body.
func (c *DocCache) Save(_ context.Context, key, contentType string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	h := c.hash(key)
	if err := os.WriteFile(c.bodyPath(h), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta := Entry{
		Key:         key,
		ContentType: contentType,
		Size:        len(body),
		SavedAt:     time.Now().UTC(),
	}
	data, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(h) + ".tmp"
	if err := os.WriteFile(tmp, data, c.fileMode()); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(h))
}
