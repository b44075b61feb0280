package export

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrOutsideExportDir is returned when a requested path escapes the export
// directory.
var ErrOutsideExportDir = errors.New("path outside export directory")

// ResolveWithin resolves requested against dir and returns the absolute path
// when it names a file inside dir. Relative paths are taken relative to the
// working directory, matching the paths handed out after a run. Symlinks are
// followed on both sides, so a link inside dir pointing elsewhere is rejected.
func ResolveWithin(dir, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" || strings.ContainsRune(requested, 0) {
		return "", ErrOutsideExportDir
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve export dir: %w", err)
	}
	if resolved, err := evalExisting(base); err == nil {
		base = resolved
	}
	target, err := filepath.Abs(requested)
	if err != nil {
		return "", ErrOutsideExportDir
	}
	resolved, err := evalExisting(target)
	if err != nil {
		return "", ErrOutsideExportDir
	}
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ErrOutsideExportDir
	}
	return target, nil
}

// evalExisting resolves symlinks in the longest existing prefix of p and
// appends the missing tail unchanged.
func evalExisting(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p, nil
	}
	head, err := evalExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(head, filepath.Base(p)), nil
}
