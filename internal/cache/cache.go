// Package cache provides the semantic query cache.
//
// The cache maps natural-language questions to previously generated SQL
// statements. Questions are embedded into vectors and compared by cosine
// similarity against stored entries (PostgreSQL + pgvector); a lookup is a
// hit when the nearest stored question is at least as similar as the
// configured threshold.
//
// Entries are insert-only and immutable. Insert does not check for
// near-duplicates: two concurrent misses for the same question may both
// insert, and a later lookup surfaces whichever entry ranks first
// (similarity, then recency). Eviction is an external policy.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/sqlmind/sqlmind/internal/log"
)

// ErrEmbeddingUnavailable indicates the embedding provider failed or timed
// out. Callers are expected to degrade (treat a lookup as a miss) rather
// than abort.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// DefaultThreshold is the minimum cosine similarity for a cache hit.
const DefaultThreshold = 0.85

// DefaultEmbedTimeout bounds a single embedding call.
const DefaultEmbedTimeout = 10 * time.Second

// Querier defines the database operations the cache needs.
// Following Go best practices: interfaces are defined by the consumer,
// not the provider. See postgres.go for the pgx implementation.
type Querier interface {
	// InsertEntry appends a new cache entry.
	InsertEntry(ctx context.Context, arg InsertEntryParams) error

	// NearestEntry returns the stored entry closest to the given embedding
	// by cosine distance, or nil when the cache is empty. Ties on distance
	// are broken by most recent insertion.
	NearestEntry(ctx context.Context, embedding pgvector.Vector) (*NearestEntryRow, error)

	// CountEntries returns the total number of cache entries.
	CountEntries(ctx context.Context) (int64, error)
}

// Config holds cache tuning parameters. The zero value uses defaults.
type Config struct {
	// Threshold is the minimum cosine similarity for Lookup to report a hit.
	Threshold float32

	// EmbedTimeout bounds each embedding provider call.
	EmbedTimeout time.Duration
}

// Store is the semantic cache backed by a vector index.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	queries   Querier
	embedder  ai.Embedder
	threshold float32
	timeout   time.Duration
	logger    log.Logger
}

// New creates a cache Store.
//
// Example (production):
//
//	store := cache.New(cache.NewQueries(pool), embedder, cache.Config{}, logger)
//
// Example (testing with mocks):
//
//	store := cache.New(mockQuerier, mockEmbedder, cache.Config{}, log.NewNop())
func New(querier Querier, embedder ai.Embedder, cfg Config, logger log.Logger) *Store {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.EmbedTimeout == 0 {
		cfg.EmbedTimeout = DefaultEmbedTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		queries:   querier,
		embedder:  embedder,
		threshold: cfg.Threshold,
		timeout:   cfg.EmbedTimeout,
		logger:    logger,
	}
}

// Lookup embeds the question and searches for the nearest cached entry.
// It returns the best match when its similarity is at least the threshold,
// or nil on a miss.
//
// An embedding provider failure is reported as ErrEmbeddingUnavailable so
// the orchestrator can degrade to the generation path.
func (s *Store) Lookup(ctx context.Context, question string) (*Match, error) {
	embedding, err := s.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	row, err := s.queries.NearestEntry(ctx, pgvector.NewVector(embedding))
	if err != nil {
		return nil, fmt.Errorf("cache search failed: %w", err)
	}
	if row == nil {
		return nil, nil // empty cache
	}

	if row.Similarity < s.threshold {
		s.logger.Debug("cache miss",
			"question", question,
			"best_similarity", row.Similarity,
			"threshold", s.threshold)
		return nil, nil
	}

	s.logger.Debug("cache hit",
		"question", question,
		"matched_question", row.Question,
		"similarity", row.Similarity)

	return &Match{
		Entry: Entry{
			ID:        row.ID,
			Question:  row.Question,
			SQL:       row.SQL,
			CreatedAt: row.CreatedAt,
		},
		Similarity: row.Similarity,
	}, nil
}

// Insert embeds the question and appends a new immutable entry.
// It does not check for near-duplicates; that relaxation is deliberate.
func (s *Store) Insert(ctx context.Context, question, sql string) (*Entry, error) {
	embedding, err := s.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Question:  question,
		SQL:       sql,
		CreatedAt: time.Now().UTC(),
	}

	err = s.queries.InsertEntry(ctx, InsertEntryParams{
		ID:        entry.ID,
		Question:  entry.Question,
		SQL:       entry.SQL,
		Embedding: pgvector.NewVector(embedding),
		CreatedAt: entry.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("cache insert failed: %w", err)
	}

	s.logger.Debug("cached query", "id", entry.ID, "question", question)
	return &entry, nil
}

// Count returns the number of cache entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.queries.CountEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache count failed: %w", err)
	}
	return int(n), nil
}

// embed generates the embedding vector for a text, bounded by the
// configured timeout. All failures are wrapped in ErrEmbeddingUnavailable.
func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.embedder.Embed(embedCtx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingUnavailable)
	}

	return resp.Embeddings[0].Embedding, nil
}
