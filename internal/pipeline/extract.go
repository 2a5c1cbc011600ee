package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/roster-retention/internal/pdftext"
	"github.com/jonathan/roster-retention/internal/roster"
	"github.com/jonathan/roster-retention/internal/types"
)

// Input is one roster document as uploaded or read from disk.
type Input struct {
	Name string
	Data []byte
}

// Empty reports whether no document was supplied at all. A named document with zero bytes
// was supplied and is left to the opener to reject.
func (in Input) Empty() bool {
	return in.Name == "" && len(in.Data) == 0
}

// ExtractRecords renders one roster document to text and parses it into student records.
// A document without any text (for example a scanned image) yields an empty slice and no error.
func ExtractRecords(ctx context.Context, opener pdftext.Opener, in Input, tolerance float64) ([]types.StudentRecord, error) {
	return extractSide(ctx, opener, in, tolerance, "", zap.NewNop())
}

func extractSide(ctx context.Context, opener pdftext.Opener, in Input, tolerance float64, side string, logger *zap.Logger) ([]types.StudentRecord, error) {
	doc, err := opener.Open(in.Data)
	if err != nil {
		return nil, &ExtractionError{Side: side, Source: in.Name, Cause: err}
	}

	text, err := pdftext.ExtractText(ctx, doc, tolerance)
	if err != nil {
		return nil, &ExtractionError{Side: side, Source: in.Name, Cause: err}
	}

	records := roster.Parse(text, in.Name)
	logger.Debug("extracted roster",
		zap.String("side", side),
		zap.String("source", in.Name),
		zap.Int("pages", doc.PageCount()),
		zap.Int("records", len(records)),
	)
	return records, nil
}
