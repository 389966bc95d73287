// Package pipeline orchestrates one question's journey from natural
// language to executed SQL. A run is strictly linear: cache lookup,
// then generation on a miss, then execution, then cache persistence
// when the SQL was freshly generated and ran successfully. There are no
// loops or retries within a run; any stage failure ends it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sqlmind/sqlmind/internal/cache"
	"github.com/sqlmind/sqlmind/internal/executor"
	"github.com/sqlmind/sqlmind/internal/feedback"
	"github.com/sqlmind/sqlmind/internal/log"
	"github.com/sqlmind/sqlmind/internal/sqlgen"
)

// Cache is the semantic cache surface the pipeline needs.
type Cache interface {
	Lookup(ctx context.Context, question string) (*cache.Match, error)
	Insert(ctx context.Context, question, sql string) (*cache.Entry, error)
}

// FeedbackReader supplies metrics and examples for prompt construction.
type FeedbackReader interface {
	Metrics(ctx context.Context, question string) (feedback.Metrics, error)
	SimilarExamples(ctx context.Context, question string, limit int) ([]feedback.Example, error)
}

// Generator produces SQL for a question.
type Generator interface {
	Generate(ctx context.Context, req sqlgen.Request) (string, error)
}

// Executor runs SQL and returns rows.
type Executor interface {
	Execute(ctx context.Context, sql string) (*executor.Result, error)
}

// SchemaProvider renders the database schema for prompts.
type SchemaProvider interface {
	Schema(ctx context.Context) (string, error)
}

// Outcome is the result of one run. On failure it still carries the SQL
// that was attempted, when any existed, so the caller can show it and
// accept feedback on it.
type Outcome struct {
	Question   string             `json:"question"`
	SQL        string             `json:"sql"`
	Result     *executor.Result   `json:"result,omitempty"`
	Cached     bool               `json:"cached"`
	Similarity float32            `json:"similarity,omitempty"`
	Metrics    *feedback.Metrics  `json:"feedback_metrics,omitempty"`
	Examples   []feedback.Example `json:"similar_examples,omitempty"`
}

// Pipeline wires the stages together.
type Pipeline struct {
	cache        Cache
	feedback     FeedbackReader
	generator    Generator
	executor     Executor
	schema       SchemaProvider
	exampleLimit int
	logger       log.Logger
}

// Config tunes one pipeline instance.
type Config struct {
	ExampleLimit int
}

// New creates a pipeline. A non-positive example limit falls back to the
// feedback store's default.
func New(c Cache, f FeedbackReader, g Generator, e Executor, s SchemaProvider, cfg Config, logger log.Logger) *Pipeline {
	if cfg.ExampleLimit <= 0 {
		cfg.ExampleLimit = feedback.DefaultExampleLimit
	}
	return &Pipeline{
		cache:        c,
		feedback:     f,
		generator:    g,
		executor:     e,
		schema:       s,
		exampleLimit: cfg.ExampleLimit,
		logger:       logger,
	}
}

// Run processes one question end to end. The returned Outcome is
// non-nil even when err is set.
func (p *Pipeline) Run(ctx context.Context, question string) (*Outcome, error) {
	outcome := &Outcome{Question: question}

	match, err := p.cache.Lookup(ctx, question)
	switch {
	case errors.Is(err, cache.ErrEmbeddingUnavailable):
		// Degrade to a miss; the run itself must not fail here.
		p.logger.Warn("embedding unavailable, treating as cache miss", "error", err)
		match = nil
	case err != nil:
		return outcome, fmt.Errorf("cache lookup: %w", err)
	}

	if match != nil {
		outcome.Cached = true
		outcome.SQL = match.Entry.SQL
		outcome.Similarity = match.Similarity
		p.logger.Debug("cache hit", "similarity", match.Similarity)
	} else {
		if err := p.generate(ctx, outcome); err != nil {
			return outcome, err
		}
	}

	result, err := p.executor.Execute(ctx, outcome.SQL)
	if err != nil {
		return outcome, err
	}
	outcome.Result = result

	if !outcome.Cached {
		if _, err := p.cache.Insert(ctx, question, outcome.SQL); err != nil {
			// The answer is already in hand; a failed insert only costs
			// a future cache hit.
			p.logger.Warn("cache insert failed", "error", err)
		}
	}

	p.logger.Info("pipeline run complete",
		"cached", outcome.Cached,
		"rows", result.RowCount())
	return outcome, nil
}

// generate fills the outcome's SQL on the cache-miss path.
func (p *Pipeline) generate(ctx context.Context, outcome *Outcome) error {
	question := outcome.Question

	metrics, err := p.feedback.Metrics(ctx, question)
	if err != nil {
		p.logger.Warn("feedback metrics unavailable", "error", err)
		metrics = feedback.Metrics{Level: feedback.LevelNeutral}
	}
	outcome.Metrics = &metrics

	examples, err := p.feedback.SimilarExamples(ctx, question, p.exampleLimit)
	if err != nil {
		p.logger.Warn("similar examples unavailable", "error", err)
		examples = nil
	}
	outcome.Examples = examples

	schemaText, err := p.schema.Schema(ctx)
	if err != nil {
		return fmt.Errorf("schema introspection: %w", err)
	}

	sql, err := p.generator.Generate(ctx, sqlgen.Request{
		Question: question,
		Schema:   schemaText,
		Metrics:  metrics,
		Examples: examples,
	})
	if err != nil {
		return err
	}
	outcome.SQL = sql
	return nil
}
