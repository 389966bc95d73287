// Package cmd provides the sqlmind CLI.
//
// Commands:
//   - serve: HTTP API server for queries and feedback
//   - ask: one-shot natural-language query from the terminal
//   - feedback: record a thumbs up/down vote on a generated query
//   - stats: overall feedback statistics
//   - seed: load the sample shopping database
//   - version: build and configuration information
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqlmind",
	Short: "Natural language to SQL with a semantic cache and feedback loop",
	Long: `sqlmind turns plain-language questions into SQL, runs them against
Postgres, and learns from thumbs up/down feedback. Answered questions are
cached by meaning, so rephrasings of a solved question skip the model
entirely.`,
	SilenceUsage: true,
}

// Execute is the main entry point for the sqlmind CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return rootCmd.Execute()
}
