package extract

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// ScriptTexts returns the raw text of every inline <script> element in
// document order. Scripts with a src attribute and empty scripts are skipped.
// A document that cannot be parsed yields nil.
func ScriptTexts(input []byte) []string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return nil
	}
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "script") && !hasAttr(n, "src") {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				}
			}
			if s := b.String(); strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return out
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// CollapseSpaces replaces every run of whitespace with a single space and
// trims the ends.
func CollapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
