package extract

// PageExtractor turns a binary document into per-page text.
// Implementations must be deterministic and free of side effects.
type PageExtractor interface {
	Pages(input []byte) ([]string, error)
}

// PDFExtractor reads PDF documents with PDFPages.
type PDFExtractor struct{}

func (PDFExtractor) Pages(input []byte) ([]string, error) {
	return PDFPages(input)
}
