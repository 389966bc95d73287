// Package app assembles the application: configuration, database pool,
// Genkit with the configured AI provider, and the query pipeline built
// on top of them. Entry points call Setup once and share the resulting
// App.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlmind/sqlmind/internal/cache"
	"github.com/sqlmind/sqlmind/internal/config"
	"github.com/sqlmind/sqlmind/internal/feedback"
	"github.com/sqlmind/sqlmind/internal/pipeline"
	"github.com/sqlmind/sqlmind/internal/schema"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Cache    *cache.Store
	Feedback *feedback.Store
	Schema   *schema.Provider
	Pipeline *pipeline.Pipeline

	otelCleanup func()
	dbCleanup   func()
}

// Close releases all resources acquired during Setup. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.dbCleanup != nil {
		a.dbCleanup()
		slog.Info("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
