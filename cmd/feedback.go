package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmind/sqlmind/internal/app"
	"github.com/sqlmind/sqlmind/internal/config"
	"github.com/sqlmind/sqlmind/internal/feedback"
)

var (
	feedbackQuestion string
	feedbackSQL      string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [up|down]",
	Short: "Record a thumbs up/down vote on a generated query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeedback(cmd.Context(), feedback.Vote(args[0]))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall feedback statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStats(cmd.Context())
	},
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackQuestion, "question", "", "the question the SQL answered (required)")
	feedbackCmd.Flags().StringVar(&feedbackSQL, "sql", "", "the SQL being rated (required)")
	_ = feedbackCmd.MarkFlagRequired("question")
	_ = feedbackCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(statsCmd)
}

func runFeedback(ctx context.Context, vote feedback.Vote) error {
	if !vote.Valid() {
		return fmt.Errorf(`vote must be "up" or "down", got %q`, vote)
	}

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	metrics, err := a.Feedback.AddFeedback(ctx, feedbackQuestion, feedbackSQL, vote)
	if err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}

	fmt.Println(metrics.StatusMessage())
	fmt.Printf("Level: %s  (+%d / -%d, %.0f%% success)\n",
		metrics.Level, metrics.ThumbsUp, metrics.ThumbsDown, metrics.SuccessRate)
	return nil
}

func runStats(ctx context.Context) error {
	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stats, err := a.Feedback.OverallStats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Printf("Total feedback:    %d\n", stats.TotalFeedback)
	fmt.Printf("Thumbs up:         %d\n", stats.ThumbsUp)
	fmt.Printf("Thumbs down:       %d\n", stats.ThumbsDown)
	fmt.Printf("Success rate:      %.1f%%\n", stats.SuccessRate)
	fmt.Printf("Unique questions:  %d\n", stats.UniqueQueries)
	fmt.Printf("Critical patterns: %d\n", stats.CriticalQueries)
	fmt.Printf("Excellent queries: %d\n", stats.ExcellentQueries)

	patterns, err := a.Feedback.FailedPatterns(ctx)
	if err != nil {
		return fmt.Errorf("reading failure patterns: %w", err)
	}
	if len(patterns) > 0 {
		fmt.Println("\nPatterns needing attention:")
		for _, p := range patterns {
			fmt.Printf("  %-50s  -%d / +%d\n", p.Question, p.ThumbsDown, p.ThumbsUp)
		}
	}
	return nil
}

func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}
