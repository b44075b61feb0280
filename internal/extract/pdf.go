package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for input that does not carry a PDF header.
var ErrNotPDF = errors.New("not a pdf document")

// PDFPages extracts the plain text of each page in page order. Pages whose
// text cannot be decoded contribute an empty string so indexes stay aligned
// with page numbers.
func PDFPages(input []byte) (pages []string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(input, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, ErrNotPDF
	}
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range p.Fonts() {
			f := p.Font(name)
			fonts[name] = &f
		}
		text, terr := p.GetPlainText(fonts)
		if terr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
