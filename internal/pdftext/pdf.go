package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/roster-retention/internal/types"
)

var errPageRange = errors.New("page index out of range")

// glyphGapRatio is the horizontal gap, relative to font size, below which two glyphs on
// the same baseline belong to one fragment.
const glyphGapRatio = 0.15

// PDFOpener opens documents with github.com/ledongthuc/pdf.
type PDFOpener struct{}

// Open parses data as a PDF.
func (PDFOpener) Open(data []byte) (doc Document, err error) {
	if len(data) == 0 {
		return nil, &OpenError{Message: "document is empty"}
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, &OpenError{Message: "malformed PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &OpenError{Message: "failed to parse PDF", Cause: err}
	}
	return &pdfDocument{reader: reader}, nil
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageFragments(_ context.Context, pageIndex int) (frags []types.Fragment, err error) {
	if pageIndex < 0 || pageIndex >= d.PageCount() {
		return nil, &PageError{Page: pageIndex + 1, Cause: errPageRange}
	}
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, &PageError{Page: pageIndex + 1, Cause: fmt.Errorf("malformed content stream: %v", r)}
		}
	}()

	page := d.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return []types.Fragment{}, nil
	}

	glyphs := page.Content().Text
	runs := make([]glyphRun, len(glyphs))
	for i, g := range glyphs {
		runs[i] = glyphRun{text: g.S, x: g.X, y: g.Y, w: g.W, size: g.FontSize}
	}
	return mergeGlyphs(runs), nil
}

// glyphRun mirrors pdf.Text so that merging can be tested without a PDF file.
type glyphRun struct {
	text string
	x, y float64
	w    float64
	size float64
}

// mergeGlyphs joins consecutive glyphs that sit on one baseline without a visible gap.
// The library reports text one glyph at a time; without merging every letter would
// become its own fragment.
func mergeGlyphs(glyphs []glyphRun) []types.Fragment {
	frags := make([]types.Fragment, 0)
	var cur *glyphRun

	flush := func() {
		if cur != nil && cur.text != "" {
			frags = append(frags, types.Fragment{Text: cur.text, X: cur.x, Y: cur.y})
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.text == " " {
			flush()
			continue
		}
		if cur != nil {
			end := cur.x + cur.w
			gap := g.x - end
			limit := math.Max(g.size, 1) * glyphGapRatio
			if math.Abs(g.y-cur.y) < 0.5 && gap >= -limit && gap <= limit {
				cur.text += g.text
				cur.w = g.x + g.w - cur.x
				continue
			}
			flush()
		}
		next := g
		cur = &next
	}
	flush()

	return frags
}
