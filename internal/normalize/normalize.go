// Package normalize maps raw registry records onto the fixed row schema.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

// Upstream field names.
const (
	SrcNIPT         = "nipti"
	SrcName         = "emriISubjektit"
	SrcTradeName    = "emriTregtar"
	SrcSector       = "sektoriIVeprimtarise"
	SrcLegalForm    = "formaLigjore"
	SrcStatus       = "statusiISubjektit"
	SrcCity         = "qyteti"
	SrcCitizenship  = "shtetesia"
	SrcRegisteredAt = "dataERegjistrimit"
	SrcOwners       = "adminOrtakAksionar"
)

// RegistrationLayout is the day/month/year format used upstream. Single digit
// days and months are accepted.
const RegistrationLayout = "2/1/2006"

// Normalize converts records into rows tagged with keyword, preserving order.
// An empty input yields one placeholder row so the attempted search still
// shows up downstream.
func Normalize(records []registry.RawRecord, keyword string) []registry.Row {
	if len(records) == 0 {
		return []registry.Row{{Keyword: keyword}}
	}
	rows := make([]registry.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Record(rec, keyword))
	}
	return rows
}

// Record normalizes a single raw record. Unknown keys are dropped.
func Record(rec registry.RawRecord, keyword string) registry.Row {
	return registry.Row{
		NIPT:         field(rec, SrcNIPT),
		Name:         field(rec, SrcName),
		TradeName:    field(rec, SrcTradeName),
		Sector:       field(rec, SrcSector),
		Owners:       SplitOwners(registry.Str(field(rec, SrcOwners))),
		LegalForm:    field(rec, SrcLegalForm),
		Status:       field(rec, SrcStatus),
		City:         field(rec, SrcCity),
		Citizenship:  field(rec, SrcCitizenship),
		RegisteredAt: ParseDate(registry.Str(field(rec, SrcRegisteredAt))),
		Keyword:      keyword,
	}
}

// SplitOwners splits a semicolon separated administrator/shareholder list,
// trimming entries and dropping empty ones. The result is never nil.
func SplitOwners(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseDate parses a registration date. Absent or malformed input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\/`, "/"))
	if s == "" {
		return nil
	}
	t, err := time.Parse(RegistrationLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func field(rec registry.RawRecord, key string) *string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case json.Number:
		s := t.String()
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		s := string(b)
		return &s
	}
}
