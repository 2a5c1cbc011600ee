package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/pdftext"
	"github.com/jonathan/roster-retention/internal/pipeline"
	"github.com/jonathan/roster-retention/internal/schemas"
	"github.com/jonathan/roster-retention/internal/types"
)

var parseRosterCmd = &cobra.Command{
	Use:   "parse-roster",
	Short: "Extract the student records of one roster into JSON",
	Long:  "Extract the student records of a roster PDF (or text export) into JSON that validates against the student_records schema.",
	RunE:  runParseRoster,
}

var (
	parseRosterInput     string
	parseRosterOutput    string
	parseRosterTolerance float64
)

func init() {
	parseRosterCmd.Flags().StringVarP(&parseRosterInput, "in", "i", "", "Path to the roster document (required)")
	parseRosterCmd.Flags().StringVarP(&parseRosterOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	parseRosterCmd.Flags().Float64Var(&parseRosterTolerance, "tolerance", layout.DefaultRowTolerance, "Vertical distance below which text fragments share a row")

	if err := parseRosterCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(parseRosterCmd)
}

func runParseRoster(cmd *cobra.Command, _ []string) error {
	in, err := readInput(parseRosterInput)
	if err != nil {
		return err
	}

	records, err := pipeline.ExtractRecords(context.Background(), pdftext.AutoOpener{}, in, parseRosterTolerance)
	if err != nil {
		return fmt.Errorf("failed to extract roster: %w", err)
	}
	if records == nil {
		records = []types.StudentRecord{}
	}

	jsonBytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := schemas.ValidateStudentRecords(jsonBytes); err != nil {
		return fmt.Errorf("extracted records do not validate against schema: %w", err)
	}

	out := cmd.OutOrStdout()
	if parseRosterOutput == "" {
		_, _ = fmt.Fprintln(out, string(jsonBytes))
		return nil
	}
	if err := writeFile(parseRosterOutput, func(w io.Writer) error {
		_, err := w.Write(append(jsonBytes, '\n'))
		return err
	}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Extracted %d students\n", len(records))
	_, _ = fmt.Fprintf(out, "Output: %s\n", parseRosterOutput)
	return nil
}
