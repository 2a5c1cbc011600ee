package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/roster-retention/internal/comparison"
	"github.com/jonathan/roster-retention/internal/config"
	"github.com/jonathan/roster-retention/internal/export"
	"github.com/jonathan/roster-retention/internal/observability"
	"github.com/jonathan/roster-retention/internal/pdftext"
	"github.com/jonathan/roster-retention/internal/pipeline"
	"github.com/jonathan/roster-retention/internal/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare an earlier roster against a current one",
	Long: `Extract both roster documents, list the students of the earlier roster that are missing from the
current one (graduates excluded) and report the retention rate.

Configuration can be provided via a JSON, YAML or TOML file (--config). CLI flags override config
file values, which override the environment.`,
	RunE: runCompare,
}

var (
	compareEarlier     string
	compareCurrent     string
	compareConfigFile  string
	compareCSVOut      string
	compareXLSXOut     string
	compareJSONOut     string
	compareSearch      string
	compareShift       string
	compareSave        bool
	compareDatabaseURL string
	compareHistoryPath string
	compareTolerance   float64
	compareVerbose     bool
)

func init() {
	compareCmd.Flags().StringVar(&compareEarlier, "earlier", "", "Path to the earlier roster (PDF or text)")
	compareCmd.Flags().StringVar(&compareCurrent, "current", "", "Path to the current roster (PDF or text)")
	compareCmd.Flags().StringVar(&compareConfigFile, "config", "", "Path to config file (JSON, YAML or TOML)")
	compareCmd.Flags().StringVar(&compareCSVOut, "csv", "", "Write the filtered dropouts to this CSV file")
	compareCmd.Flags().StringVar(&compareXLSXOut, "xlsx", "", "Write the filtered dropouts to this XLSX file")
	compareCmd.Flags().StringVar(&compareJSONOut, "json", "", "Write the full comparison result to this JSON file")
	compareCmd.Flags().StringVar(&compareSearch, "search", "", "Only list dropouts whose name or id contains this text")
	compareCmd.Flags().StringVar(&compareShift, "shift", "", "Only list dropouts of this shift (All, Mañana, Tarde, Vespertino, Noche, Otro)")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "Store the comparison in the history for follow-up")
	compareCmd.Flags().StringVar(&compareDatabaseURL, "db-url", "", "PostgreSQL URL for the history (default: local SQLite)")
	compareCmd.Flags().StringVar(&compareHistoryPath, "history", "", "Path to the SQLite history file")
	compareCmd.Flags().Float64Var(&compareTolerance, "tolerance", 0, "Vertical distance below which text fragments share a row")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Print debug logs")

	rootCmd.AddCommand(compareCmd)
}

// compareConfig resolves flags over the config file over the environment
func compareConfig() (config.Config, error) {
	fileCfg := config.Config{}
	path := compareConfigFile
	if path == "" {
		if def := config.DefaultConfigPath(); fileExists(def) {
			path = def
		}
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = *loaded
	}

	flags := config.Config{
		Earlier:      compareEarlier,
		Current:      compareCurrent,
		CSVOut:       compareCSVOut,
		XLSXOut:      compareXLSXOut,
		JSONOut:      compareJSONOut,
		DatabaseURL:  compareDatabaseURL,
		HistoryPath:  compareHistoryPath,
		RowTolerance: compareTolerance,
		Search:       compareSearch,
		Shift:        compareShift,
		Verbose:      compareVerbose || fileCfg.Verbose,
	}
	merged := flags.MergeWithDefaults(fileCfg.MergeWithDefaults(config.FromEnv()))
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	if merged.Earlier == "" || merged.Current == "" {
		return config.Config{}, fmt.Errorf("both --earlier and --current are required (via flags or config file)")
	}
	return merged, nil
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cfg, err := compareConfig()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	earlier, err := readInput(cfg.Earlier)
	if err != nil {
		return err
	}
	current, err := readInput(cfg.Current)
	if err != nil {
		return err
	}

	ctx := context.Background()
	result, err := pipeline.Run(ctx, pipeline.Options{
		Earlier:      earlier,
		Current:      current,
		RowTolerance: cfg.RowTolerance,
		Opener:       pdftext.AutoOpener{},
		Logger:       logger,
		OnProgress: func(event pipeline.ProgressEvent) {
			logger.Debug("progress", zap.String("step", event.Step), zap.String("side", event.Side), zap.String("message", event.Message))
		},
	})
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	query := types.DropoutQuery{Search: cfg.Search, Shift: cfg.Shift}.Normalized()
	filtered := comparison.Filter(result.Comparison.Dropouts, query)

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	printer.PrintComparison(result.Label, result.Comparison, result.Advisories)
	printer.PrintBreakdown(result.Breakdown)
	printer.PrintDropouts(filtered, nil)

	rows := export.Rows(filtered, nil)
	if cfg.CSVOut != "" {
		if err := writeFile(cfg.CSVOut, func(w io.Writer) error { return export.WriteCSV(w, rows) }); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "CSV: %s\n", cfg.CSVOut)
	}
	if cfg.XLSXOut != "" {
		if err := writeFile(cfg.XLSXOut, func(w io.Writer) error { return export.WriteXLSX(w, rows) }); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "XLSX: %s\n", cfg.XLSXOut)
	}
	if cfg.JSONOut != "" {
		if err := writeFile(cfg.JSONOut, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "JSON: %s\n", cfg.JSONOut)
	}

	if compareSave {
		h, err := openHistory(ctx, cfg.DatabaseURL, cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer closeHistory(h)
		if err := h.SaveRun(ctx, result.ToRun()); err != nil {
			return fmt.Errorf("failed to save comparison: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Saved comparison %s\n", result.ID)
	}

	return nil
}

// readInput reads a roster document, named by its base file name
func readInput(path string) (pipeline.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	return pipeline.Input{Name: filepath.Base(path), Data: data}, nil
}

// writeFile creates path and hands it to write
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
