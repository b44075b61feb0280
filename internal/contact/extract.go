// Package contact mines subject documents for an email address and a phone
// number. Extraction is best effort: every failure surfaces as a missing
// field, never as an error.
package contact

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/qkbleads/internal/extract"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

var (
	// Label variants seen in registry extracts: "E-mail", "Email", "E mail"
	// and typographic dashes.
	emailPattern = regexp.MustCompile(`(?i)\bE\s*[-\x{2010}\x{2011}\x{2013}\x{2014}]?\s*mail\s*:?\s*([A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,})`)
	// "Telefon", "Telefoni", "Tel." or "Tel" as a whole word followed by at least six
	// digits, spaces or phone punctuation, ending on a digit or ")".
	phonePattern = regexp.MustCompile(`(?i)\bTel(?:efoni?)?\.?\s*:?\s*([0-9+(][0-9 +()\-]{4,}[0-9)])`)
)

// Extractor finds contact details in a document. The zero value reads PDFs.
type Extractor struct {
	Pages extract.PageExtractor
}

// Extract reads doc with the default PDF extractor.
func Extract(doc []byte) registry.Contact {
	return Extractor{}.Extract(doc)
}

// Extract returns whatever contact fields can be recovered from doc. Input
// that cannot be read as a document yields an empty Contact.
func (e Extractor) Extract(doc []byte) registry.Contact {
	if len(doc) == 0 {
		return registry.Contact{}
	}
	pe := e.Pages
	if pe == nil {
		pe = extract.PDFExtractor{}
	}
	pages, err := pe.Pages(doc)
	if err != nil {
		return registry.Contact{}
	}
	return FromPages(pages)
}

// FromPages searches the whole document first and retries each missing
// field against the first page alone.
func FromPages(pages []string) registry.Contact {
	if len(pages) == 0 {
		return registry.Contact{}
	}
	norm := make([]string, len(pages))
	for i, p := range pages {
		norm[i] = extract.CollapseSpaces(p)
	}
	combined := strings.Join(norm, "\n")

	var c registry.Contact
	c.Email = firstMatch(emailPattern, combined)
	c.Phone = firstMatch(phonePattern, combined)
	if c.Email == nil {
		c.Email = firstMatch(emailPattern, norm[0])
	}
	if c.Phone == nil {
		c.Phone = firstMatch(phonePattern, norm[0])
	}
	return c
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}
