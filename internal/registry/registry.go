// Package registry holds the record types shared by the scrape pipeline:
// raw upstream records, normalized rows and the result set written to disk.
package registry

import (
	"strings"
	"time"
)

// RawRecord is one untyped record as decoded from the upstream payload.
// Values are usually strings or nil but the shape is not guaranteed.
type RawRecord map[string]any

// Contact is the best-effort outcome of mining a subject document.
// Either field may be nil independently.
type Contact struct {
	Email *string `json:"email"`
	Phone *string `json:"telefon"`
}

// Found reports whether at least one contact field was recovered.
func (c Contact) Found() bool {
	return c.Email != nil || c.Phone != nil
}

// Row is a normalized registry record. Nil pointers mean the value was
// absent upstream. Owners is nil only on rows that carry no record at all.
type Row struct {
	NIPT         *string    `json:"nipt"`
	Name         *string    `json:"name"`
	TradeName    *string    `json:"trade_name"`
	Sector       *string    `json:"sector"`
	Owners       []string   `json:"owners"`
	LegalForm    *string    `json:"legal_form"`
	Status       *string    `json:"status"`
	City         *string    `json:"city"`
	Citizenship  *string    `json:"citizenship"`
	RegisteredAt *time.Time `json:"registered_at"`
	Keyword      string     `json:"keyword"`
	Error        string     `json:"error,omitempty"`

	Contact Contact `json:"-"`
}

// Identifier returns the trimmed subject identifier or "" when absent.
func (r Row) Identifier() string {
	if r.NIPT == nil {
		return ""
	}
	return strings.TrimSpace(*r.NIPT)
}

// ErrorRow builds the row recorded for a keyword whose search failed.
func ErrorRow(keyword string, err error) Row {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Row{Keyword: keyword, Error: msg}
}

// ResultSet is the ordered output of one scrape run.
type ResultSet struct {
	Rows []Row
	// Contacts is set when contact fetching ran, which adds the email and
	// telefon columns to every export.
	Contacts bool
}

// Len returns the number of rows.
func (rs ResultSet) Len() int { return len(rs.Rows) }

// HasErrors reports whether any row carries a search error.
func (rs ResultSet) HasErrors() bool {
	for _, r := range rs.Rows {
		if r.Error != "" {
			return true
		}
	}
	return false
}

// Str returns the pointed-to string or "" for nil.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StrPtr returns a pointer to a copy of s.
func StrPtr(s string) *string { return &s }
