// Package observability provides logging setup and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jonathan/roster-retention/internal/followup"
	"github.com/jonathan/roster-retention/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 84
	// maxBarWidth is the widest bar in a breakdown chart
	maxBarWidth = 30
)

// Column widths of the dropout table.
const (
	colID       = 12
	colName     = 28
	colLevel    = 10
	colShift    = 11
	colStatus   = 10
	colEllipsis = "…"
)

// Printer handles formatted output for the CLI
type Printer struct {
	out        io.Writer
	boxStyle   lipgloss.Style
	titleStyle lipgloss.Style
	warnStyle  lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer. Colors are only used
// when the writer is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		boxStyle: r.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1).
			Width(boxWidth),
		titleStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")),
		warnStyle:  r.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title, content string) {
	body := p.titleStyle.Render(title) + "\n\n" + strings.TrimRight(content, "\n")
	fmt.Fprintln(p.out, p.boxStyle.Render(body))
}

// PrintComparison outputs the headline numbers of a comparison and any advisories.
func (p *Printer) PrintComparison(label string, c types.Comparison, advisories []types.Advisory) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Alumnos anteriores:  %d\n", c.TotalEarlier))
	sb.WriteString(fmt.Sprintf("Alumnos actuales:    %d\n", c.TotalCurrent))
	sb.WriteString(fmt.Sprintf("No inscritos:        %d\n", len(c.Dropouts)))
	sb.WriteString(fmt.Sprintf("Retención:           %d%%\n", c.RetentionRate))

	if len(advisories) > 0 {
		sb.WriteString("\n")
		for _, a := range advisories {
			sb.WriteString(p.warnStyle.Render("⚠ "+a.Message) + "\n")
		}
	}

	p.printBox(label, sb.String())
}

// PrintBreakdown outputs the dropouts per level and per shift as bar charts.
func (p *Printer) PrintBreakdown(b types.Breakdown) {
	var sb strings.Builder

	sb.WriteString("Fugas por nivel:\n")
	writeBars(&sb, b.ByLevel)
	sb.WriteString("\nFugas por turno:\n")
	writeBars(&sb, b.ByShift)
	sb.WriteString(fmt.Sprintf("\nTurno con más fugas: %s\n", b.WorstShift))

	p.printBox("DESGLOSE", sb.String())
}

func writeBars(sb *strings.Builder, buckets []types.BucketCount) {
	if len(buckets) == 0 {
		sb.WriteString("  (sin datos)\n")
		return
	}

	top, labelWidth := 0, 0
	for _, bc := range buckets {
		top = max(top, bc.Count)
		labelWidth = max(labelWidth, runewidth.StringWidth(bc.Name))
	}

	for _, bc := range buckets {
		width := 0
		if top > 0 {
			width = max(1, bc.Count*maxBarWidth/top)
		}
		sb.WriteString(fmt.Sprintf("  %s %s %d\n",
			runewidth.FillRight(bc.Name, labelWidth), strings.Repeat("█", width), bc.Count))
	}
}

// PrintDropouts outputs the dropout table with contact status. A nil tracker marks every
// student as pending.
func (p *Printer) PrintDropouts(dropouts []types.StudentRecord, tracker *followup.Tracker) {
	if tracker == nil {
		tracker = followup.NewTracker()
	}

	var sb strings.Builder
	sb.WriteString(dropoutRow("ID", "Nombre", "Nivel", "Turno", "Estado"))
	sb.WriteString(strings.Repeat("─", colID+colName+colLevel+colShift+colStatus+4) + "\n")
	for _, d := range dropouts {
		sb.WriteString(dropoutRow(d.ID, d.Name, d.LevelNormalized, d.ShiftOrDefault(), tracker.Status(d.ID)))
	}
	if len(dropouts) == 0 {
		sb.WriteString("(sin alumnos)\n")
	}

	p.printBox(fmt.Sprintf("NO INSCRITOS (%d)", len(dropouts)), sb.String())
}

func dropoutRow(id, name, level, shift, status string) string {
	return strings.Join([]string{
		cell(id, colID),
		cell(name, colName),
		cell(level, colLevel),
		cell(shift, colShift),
		cell(status, colStatus),
	}, " ") + "\n"
}

// cell pads or truncates s to exactly width terminal columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, colEllipsis), width)
}

// PrintFollowUp outputs contact progress.
func (p *Printer) PrintFollowUp(f types.FollowUp) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Contactados: %d\n", f.Contacted))
	sb.WriteString(fmt.Sprintf("Pendientes:  %d\n", f.Pending))
	sb.WriteString(fmt.Sprintf("Avance:      %d%%\n", f.CompletionPercent))

	p.printBox("SEGUIMIENTO", sb.String())
}
