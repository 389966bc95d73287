package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sqlmind/sqlmind/db"
	"github.com/sqlmind/sqlmind/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run migrations and load the sample shopping database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// runSeed needs only the database, not an API key, so it connects
// directly instead of going through app.Setup.
func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.Seed(ctx, pool); err != nil {
		return fmt.Errorf("seeding sample data: %w", err)
	}

	fmt.Println("Sample shopping database loaded.")
	return nil
}
