// Package parse turns raw registry search responses into raw records.
//
// The upstream endpoint answers either with a JSON document or with an HTML
// page whose script hands the payload to JSON.parse as a string literal. The
// shapes are tried in order and the first one that yields records wins.
package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hyperifyio/qkbleads/internal/extract"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// ErrUnexpectedShape is returned when no known response shape matched.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// WrapperKeys are the object keys probed, in order, for the record list when
// the response is a JSON object.
var WrapperKeys = []string{"data", "rows", "aaData", "results"}

// strategy tries one response shape. matched reports whether the shape was
// recognized, even if it carried no records.
type strategy struct {
	name string
	try  func(body []byte, contentType string) (records []registry.RawRecord, matched bool)
}

var strategies = []strategy{
	{name: "json", try: directJSON},
	{name: "embedded", try: embeddedLiteral},
}

// Parse extracts raw records from a search response body. A recognized shape
// with no records yields an empty, non-nil slice.
func Parse(body []byte, contentType string) ([]registry.RawRecord, error) {
	matched := false
	for _, s := range strategies {
		records, ok := s.try(body, contentType)
		if !ok {
			continue
		}
		matched = true
		if len(records) > 0 {
			return records, nil
		}
	}
	if matched {
		return []registry.RawRecord{}, nil
	}
	return nil, fmt.Errorf("%w (content-type %q, %d bytes)", ErrUnexpectedShape, contentType, len(body))
}

func directJSON(body []byte, contentType string) ([]registry.RawRecord, bool) {
	trimmed := bytes.TrimSpace(body)
	looksJSON := len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
	if !looksJSON && !isJSONContentType(contentType) {
		return nil, false
	}
	v, err := decodeJSON(trimmed)
	if err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return toRecords(t), true
	case map[string]any:
		for _, k := range WrapperKeys {
			if list, ok := t[k].([]any); ok {
				return toRecords(list), true
			}
		}
		if len(t) == 0 {
			return []registry.RawRecord{}, true
		}
		return []registry.RawRecord{registry.RawRecord(t)}, true
	}
	return nil, false
}

var (
	doubleQuotedParse = regexp.MustCompile(`(?s)JSON\.parse\(\s*"((?:[^"\\]|\\.)*)"\s*\)`)
	singleQuotedParse = regexp.MustCompile(`(?s)JSON\.parse\(\s*'((?:[^'\\]|\\.)*)'\s*\)`)
)

func embeddedLiteral(body []byte, _ string) ([]registry.RawRecord, bool) {
	sources := extract.ScriptTexts(body)
	sources = append(sources, string(body))
	for _, src := range sources {
		literal, ok := findParseLiteral(src)
		if !ok {
			continue
		}
		text, err := UnescapeJSString(literal)
		if err != nil {
			continue
		}
		v, err := decodeJSON([]byte(text))
		if err != nil {
			continue
		}
		if list, ok := v.([]any); ok {
			return toRecords(list), true
		}
		return []registry.RawRecord{}, true
	}
	return nil, false
}

// findParseLiteral returns the escaped contents of the first JSON.parse
// string literal in src, whichever quote style comes first.
func findParseLiteral(src string) (string, bool) {
	d := doubleQuotedParse.FindStringSubmatchIndex(src)
	s := singleQuotedParse.FindStringSubmatchIndex(src)
	switch {
	case d == nil && s == nil:
		return "", false
	case s == nil || (d != nil && d[0] < s[0]):
		return src[d[2]:d[3]], true
	default:
		return src[s[2]:s[3]], true
	}
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json value")
	}
	return v, nil
}

// toRecords keeps the object elements of list in order.
func toRecords(list []any) []registry.RawRecord {
	out := make([]registry.RawRecord, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, registry.RawRecord(m))
		}
	}
	return out
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "application/json" || strings.HasSuffix(ct, "+json") || ct == "text/json"
}
