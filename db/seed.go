package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sample_data.sql
var sampleDataSQL string

// Seed loads the sample shopping/sales database into the target database.
// The seed is idempotent: existing rows are left untouched.
//
// This exists for demos and local development; production deployments
// point sqlmind at an existing schema instead.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Debug("seed transaction rollback", "error", rbErr)
			}
		}
	}()

	if _, err := tx.Exec(ctx, sampleDataSQL); err != nil {
		return fmt.Errorf("failed to execute seed script: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	committed = true

	slog.Info("sample database seeded")
	return nil
}
