package export

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Prefix starts every export file name.
const Prefix = "qkb_export"

// TimestampLayout is the UTC timestamp embedded in export names.
const TimestampLayout = "20060102_150405"

// DedupSuffix marks the identifier-level deduplicated export.
const DedupSuffix = "_dedup"

// Slug turns a city name into a file name fragment: accents are folded,
// spaces become underscores and anything outside letters, digits, "-" and
// "_" is dropped. An empty result becomes "all".
func Slug(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(city))
	if err != nil {
		folded = city
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "all"
	}
	return s
}

// FileName returns the export name for city at the given time, for example
// qkb_export_Tirane_20250102_150405.csv. The time is converted to UTC.
func FileName(city string, at time.Time, ext string) string {
	return Prefix + "_" + Slug(city) + "_" + at.UTC().Format(TimestampLayout) + normExt(ext)
}

// DedupFileName is FileName with the deduplication suffix.
func DedupFileName(city string, at time.Time, ext string) string {
	return Prefix + "_" + Slug(city) + "_" + at.UTC().Format(TimestampLayout) + DedupSuffix + normExt(ext)
}

// WithExt swaps the extension of path.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + normExt(ext)
}

func normExt(ext string) string {
	if ext == "" {
		return ".csv"
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
