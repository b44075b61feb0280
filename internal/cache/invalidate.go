package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes entries whose metadata SavedAt is older than maxAge.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := walkMeta(dir, func(metaPath string, e Entry) {
		if now.Sub(e.SavedAt) <= maxAge {
			return
		}
		removed++
		removeEntry(metaPath)
	})
	return removed, err
}

// EnforceLimits evicts least recently used entries until the total body size
// is at most maxBytes and the entry count at most maxCount. Zero disables a
// limit. Recency is the body modification time, which LoadBody refreshes.
func EnforceLimits(dir string, maxBytes int64, maxCount int) (int, error) {
	if maxBytes <= 0 && maxCount <= 0 {
		return 0, nil
	}
	type item struct {
		meta string
		size int64
		used time.Time
	}
	var items []item
	var total int64
	err := walkMeta(dir, func(metaPath string, _ Entry) {
		info, err := os.Stat(bodyFor(metaPath))
		if err != nil {
			return
		}
		items = append(items, item{meta: metaPath, size: info.Size(), used: info.ModTime()})
		total += info.Size()
	})
	if err != nil {
		return 0, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].used.Before(items[j].used) })
	removed := 0
	for _, it := range items {
		overCount := maxCount > 0 && len(items)-removed > maxCount
		overBytes := maxBytes > 0 && total > maxBytes
		if !overCount && !overBytes {
			break
		}
		removeEntry(it.meta)
		total -= it.size
		removed++
	}
	return removed, nil
}

func walkMeta(dir string, fn func(metaPath string, e Entry)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil // skip unreadable
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil // skip malformed
		}
		fn(path, e)
		return nil
	})
}

func bodyFor(metaPath string) string {
	return strings.TrimSuffix(metaPath, ".meta.json") + ".body"
}

func removeEntry(metaPath string) {
	_ = os.Remove(metaPath)
	_ = os.Remove(bodyFor(metaPath))
}
