package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlmind/sqlmind/internal/app"
	"github.com/sqlmind/sqlmind/internal/config"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question in plain language and run the generated SQL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, question string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	outcome, err := a.Pipeline.Run(ctx, question)
	if err != nil {
		if outcome != nil && outcome.SQL != "" {
			fmt.Fprintf(os.Stderr, "SQL attempted: %s\n", outcome.SQL)
		}
		return err
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Printf("SQL: %s\n", outcome.SQL)
	if outcome.Cached {
		fmt.Printf("(cached, similarity %.3f)\n", outcome.Similarity)
	}
	fmt.Println()
	printRows(outcome.Result.Columns, outcome.Result.Rows)
	return nil
}

// printRows writes a minimal aligned text table.
func printRows(columns []string, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}
	fmt.Println(strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = fmt.Sprintf("%v", row[col])
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("\n%d row(s)\n", len(rows))
}
