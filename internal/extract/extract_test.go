package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func TestScriptTexts_SkipsExternalAndEmpty(t *testing.T) {
	page := `<!doctype html>
    <html>
      <head>
        <script src="/app.js"></script>
        <script>var rows = JSON.parse("[]");</script>
      </head>
      <body>
        <script>   </script>
        <p>JSON.parse("not a script")</p>
        <script type="text/javascript">window.x = 1;</script>
      </body>
    </html>`

	scripts := ScriptTexts([]byte(page))
	if len(scripts) != 2 {
		t.Fatalf("expected 2 inline scripts, got %d: %q", len(scripts), scripts)
	}
	if !strings.Contains(scripts[0], `JSON.parse("[]")`) {
		t.Fatalf("unexpected first script: %q", scripts[0])
	}
	if !strings.Contains(scripts[1], "window.x") {
		t.Fatalf("unexpected second script: %q", scripts[1])
	}
}

func TestScriptTexts_KeepsEscapesVerbatim(t *testing.T) {
	page := `<script>const d = JSON.parse("[{\"a\":\"ë\"}]");</script>`
	scripts := ScriptTexts([]byte(page))
	if len(scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(scripts))
	}
	if !strings.Contains(scripts[0], `\"a\":\"ë\"`) {
		t.Fatalf("script text was altered: %q", scripts[0])
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := "  E-mail:\t\tinfo@example.com \n\n Tel:  +355 69 "
	got := CollapseSpaces(in)
	want := "E-mail: info@example.com Tel: +355 69"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPDFPages_ReadsPagesInOrder(t *testing.T) {
	doc := makePDF(t, []string{"First page text"}, []string{"Second page text"})
	pages, err := PDFPages(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "First page text") {
		t.Fatalf("page 1 text missing: %q", pages[0])
	}
	if !strings.Contains(pages[1], "Second page text") {
		t.Fatalf("page 2 text missing: %q", pages[1])
	}
}

func TestPDFPages_RejectsNonPDF(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("hello"), []byte("<html></html>")} {
		if _, err := PDFPages(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestPDFPages_TruncatedDocumentDoesNotPanic(t *testing.T) {
	doc := makePDF(t, []string{"Email: x@y.com"})
	_, _ = PDFPages(doc[:len(doc)/2])
	_, _ = PDFExtractor{}.Pages([]byte("%PDF-1.4\n%garbage"))
}

func makePDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		pdf.AddPage()
		for _, line := range lines {
			pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}
