package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-retention/internal/config"
	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/layout"
	"github.com/jonathan/roster-retention/internal/observability"
	"github.com/jonathan/roster-retention/internal/pdftext"
	"github.com/jonathan/roster-retention/internal/server"
	"github.com/jonathan/roster-retention/internal/server/ratelimit"
)

var (
	servePort        int
	serveDatabaseURL string
	serveHistoryPath string
	serveMemory      bool
	serveTolerance   float64
	serveVerbose     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running comparisons and tracking follow-up.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: $PORT or 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL URL for the history (default: local SQLite)")
	serveCmd.Flags().StringVar(&serveHistoryPath, "history", "", "Path to the SQLite history file")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep comparisons in memory only")
	serveCmd.Flags().Float64Var(&serveTolerance, "tolerance", layout.DefaultRowTolerance, "Vertical distance below which text fragments share a row")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print debug logs")
	rootCmd.AddCommand(serveCmd)
}

// resolvePort picks the flag, then $PORT, then the default port
func resolvePort(flagPort int) (int, error) {
	if flagPort > 0 {
		return flagPort, nil
	}
	cfg := config.FromEnv()
	merged := cfg.MergeWithDefaults(config.Config{})
	port, err := strconv.Atoi(merged.Port)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid port %q", merged.Port)
	}
	return port, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	port, err := resolvePort(servePort)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(serveVerbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	var store history.Store
	if serveMemory {
		store = history.NewMemory()
	} else if store, err = openHistory(ctx, serveDatabaseURL, serveHistoryPath); err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:         port,
		Store:        store,
		Opener:       pdftext.AutoOpener{},
		Logger:       logger,
		RateLimit:    ratelimit.LoadConfig(),
		RowTolerance: serveTolerance,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
