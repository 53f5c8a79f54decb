package ocr

import (
	"errors"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrNoExtractableText is returned by PDFDocument.NativeText when every page
// came back empty, the signal the pipeline uses to fall back to pdf-ocr.
var ErrNoExtractableText = errors.New("pdf has no extractable text")

// PDFDocument wraps a go-fitz document handle, exposing the two operations
// the pipeline needs: native per-page text and per-page rasterization.
type PDFDocument struct {
	doc *fitz.Document
}

// OpenPDF opens a PDF already loaded into memory. A malformed PDF surfaces
// here as the underlying MuPDF error.
func OpenPDF(data []byte) (*PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &PDFDocument{doc: doc}, nil
}

// NumPage returns the page count.
func (d *PDFDocument) NumPage() int {
	return d.doc.NumPage()
}

// NativeText concatenates the native text of every page, separated by a
// blank line. Pages that error or come back blank are skipped; if none
// yielded any text at all, ErrNoExtractableText signals the pdf-ocr
// fallback should run.
func (d *PDFDocument) NativeText() (string, error) {
	var parts []string
	for i := 0; i < d.doc.NumPage(); i++ {
		text, err := d.doc.Text(i)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "", ErrNoExtractableText
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "\n\n" + p
	}
	return joined, nil
}

// RasterizePage renders one page at the given DPI, for the pdf-ocr fallback.
func (d *PDFDocument) RasterizePage(pageNum int, dpi int) (image.Image, error) {
	return d.doc.ImageDPI(pageNum, float64(dpi))
}

// Close releases the underlying MuPDF document.
func (d *PDFDocument) Close() error {
	return d.doc.Close()
}
