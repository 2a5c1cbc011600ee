// Package main provides the entry point for the roster retention CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retention_agent",
	Short: "Roster retention tracker",
	Long: "Compares an earlier and a current student roster PDF, lists the students who did not re-enroll, " +
		"and tracks follow-up contact with them from the command line or via REST API.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
