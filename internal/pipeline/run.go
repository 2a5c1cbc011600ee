// Package pipeline orchestrates a roster comparison: both documents are extracted concurrently,
// then compared and summarised.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/roster-retention/internal/comparison"
	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/pdftext"
	"github.com/jonathan/roster-retention/internal/types"
)

// Sides of a comparison.
const (
	SideEarlier = "earlier"
	SideCurrent = "current"
)

var sideLabels = map[string]string{
	SideEarlier: "ANTERIOR",
	SideCurrent: "ACTUAL",
}

// ProgressEvent represents a progress update during a comparison run
type ProgressEvent struct {
	Step    string `json:"step"`
	Side    string `json:"side,omitempty"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running a comparison
type Options struct {
	Earlier      Input
	Current      Input
	RowTolerance float64
	Opener       pdftext.Opener
	Logger       *zap.Logger
	OnProgress   ProgressCallback
}

// Result is a completed comparison. It is only returned when both documents were processed.
type Result struct {
	ID          uuid.UUID             `json:"id"`
	Label       string                `json:"label"`
	EarlierName string                `json:"earlier_name"`
	CurrentName string                `json:"current_name"`
	Earlier     []types.StudentRecord `json:"earlier"`
	Current     []types.StudentRecord `json:"current"`
	Comparison  types.Comparison      `json:"comparison"`
	Breakdown   types.Breakdown       `json:"breakdown"`
	Advisories  []types.Advisory      `json:"advisories,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// ToRun converts the result into a persistable run with no students contacted yet.
func (r *Result) ToRun() *types.ComparisonRun {
	return &types.ComparisonRun{
		ID:          r.ID,
		Label:       r.Label,
		EarlierName: r.EarlierName,
		CurrentName: r.CurrentName,
		Comparison:  r.Comparison,
		Advisories:  r.Advisories,
		Contacted:   []string{},
		CreatedAt:   r.CreatedAt,
	}
}

func emitProgress(opts *Options, step, side, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Side: side, Message: message})
	}
}

// Label formats the display label of a comparison between two documents.
func Label(earlierName, currentName string) string {
	return fmt.Sprintf("Comparación: %s → %s", earlierName, currentName)
}

// Advisory builds the notice attached to a side that yielded no records.
func Advisory(side string) types.Advisory {
	return types.Advisory{
		Side: side,
		Message: fmt.Sprintf("No pude leer alumnos del PDF %s. Si el PDF está escaneado (imagen), no se puede extraer texto.",
			sideLabels[side]),
	}
}

// Run extracts both rosters concurrently and compares them. Either a complete Result or an
// error is returned; partial extraction results are discarded.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Earlier.Empty() {
		return nil, &MissingInputError{Side: SideEarlier}
	}
	if opts.Current.Empty() {
		return nil, &MissingInputError{Side: SideCurrent}
	}
	if opts.Opener == nil {
		opts.Opener = pdftext.PDFOpener{}
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = layout.DefaultRowTolerance
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Each goroutine writes only its own slot.
	var earlier, current []types.StudentRecord

	g.Go(func() error {
		records, err := extractSide(gCtx, opts.Opener, opts.Earlier, opts.RowTolerance, SideEarlier, logger)
		if err != nil {
			return err
		}
		earlier = records
		emitProgress(&opts, "extract", SideEarlier, fmt.Sprintf("Read %d students from %s", len(records), opts.Earlier.Name))
		return nil
	})

	g.Go(func() error {
		records, err := extractSide(gCtx, opts.Opener, opts.Current, opts.RowTolerance, SideCurrent, logger)
		if err != nil {
			return err
		}
		current = records
		emitProgress(&opts, "extract", SideCurrent, fmt.Sprintf("Read %d students from %s", len(records), opts.Current.Name))
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Warn("comparison aborted", zap.Error(err))
		return nil, err
	}

	var advisories []types.Advisory
	if len(earlier) == 0 {
		advisories = append(advisories, Advisory(SideEarlier))
	}
	if len(current) == 0 {
		advisories = append(advisories, Advisory(SideCurrent))
	}
	for _, a := range advisories {
		logger.Warn("roster yielded no students", zap.String("side", a.Side))
	}

	cmp := comparison.Compare(earlier, current)
	emitProgress(&opts, "compare", "", fmt.Sprintf("Found %d dropouts, retention %d%%", len(cmp.Dropouts), cmp.RetentionRate))

	result := &Result{
		ID:          uuid.New(),
		Label:       Label(opts.Earlier.Name, opts.Current.Name),
		EarlierName: opts.Earlier.Name,
		CurrentName: opts.Current.Name,
		Earlier:     earlier,
		Current:     current,
		Comparison:  cmp,
		Breakdown:   comparison.Summarize(cmp.Dropouts),
		Advisories:  advisories,
		CreatedAt:   time.Now().UTC(),
	}

	logger.Info("comparison complete",
		zap.String("id", result.ID.String()),
		zap.Int("earlier", cmp.TotalEarlier),
		zap.Int("current", cmp.TotalCurrent),
		zap.Int("dropouts", len(cmp.Dropouts)),
		zap.Int("retention_rate", cmp.RetentionRate),
	)
	return result, nil
}
