// Package pdftext reads positioned text fragments out of PDF documents and rebuilds
// their text line by line.
package pdftext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/types"
)

// Document is an opened document that exposes its pages as positioned fragments.
// Pages without text, such as scanned images, return an empty slice and no error.
type Document interface {
	PageCount() int
	PageFragments(ctx context.Context, pageIndex int) ([]types.Fragment, error)
}

// Opener opens raw document bytes.
type Opener interface {
	Open(data []byte) (Document, error)
}

// ExtractText rebuilds the text of every page, one reconstructed row per line.
func ExtractText(ctx context.Context, doc Document, tolerance float64) (string, error) {
	pages := make([][]string, 0, doc.PageCount())
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		frags, err := doc.PageFragments(ctx, i)
		if err != nil {
			return "", err
		}
		pages = append(pages, layout.ReconstructLines(frags, tolerance))
	}
	return layout.JoinPages(pages), nil
}

// StaticDocument is an in-memory Document, useful for text that was already positioned
// by another tool.
type StaticDocument [][]types.Fragment

// PageCount returns the number of pages.
func (d StaticDocument) PageCount() int { return len(d) }

// PageFragments returns the fragments of one page.
func (d StaticDocument) PageFragments(_ context.Context, pageIndex int) ([]types.Fragment, error) {
	if pageIndex < 0 || pageIndex >= len(d) {
		return nil, &PageError{Page: pageIndex + 1, Cause: errPageRange}
	}
	return d[pageIndex], nil
}

// TextDocument turns plain text into a one-page StaticDocument, one fragment per line,
// so that text exports can go through the same pipeline as PDFs.
func TextDocument(text string) StaticDocument {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	page := make([]types.Fragment, 0, len(lines))
	for i, line := range lines {
		page = append(page, types.Fragment{Text: line, X: 0, Y: float64(-10 * i)})
	}
	return StaticDocument{page}
}

// TextOpener opens plain text as a one-page document.
type TextOpener struct{}

// Open wraps data in a TextDocument. Zero-length data is rejected.
func (TextOpener) Open(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, &OpenError{Message: "document is empty"}
	}
	return TextDocument(string(data)), nil
}

// AutoOpener opens PDFs with PDFOpener and UTF-8 text with TextOpener.
type AutoOpener struct{}

// Open sniffs the PDF header and falls back to text. Binary data that is not a PDF is rejected.
func (AutoOpener) Open(data []byte) (Document, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return PDFOpener{}.Open(data)
	}
	if !utf8.Valid(data) {
		return nil, &OpenError{Message: "document is neither a PDF nor UTF-8 text"}
	}
	return TextOpener{}.Open(data)
}

var pdfMagic = []byte("%PDF-")
