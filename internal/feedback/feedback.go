// Package feedback records user judgements on generated SQL and derives
// performance metrics from the accumulated event log. The log is
// append-only: metrics and performance levels are computed on every read
// rather than stored, so two reads without intervening writes always
// agree.
package feedback

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sqlmind/sqlmind/internal/log"
)

// DefaultExampleLimit caps how many similar successful examples are
// returned when the caller does not say otherwise.
const DefaultExampleLimit = 3

// similarityFloor is the minimum word-overlap score for an up-voted
// question to count as similar.
const similarityFloor = 0.3

// Querier is the storage dependency of Store.
type Querier interface {
	InsertEvent(ctx context.Context, arg InsertEventParams) error
	CountVotes(ctx context.Context, question string) (CountVotesRow, error)
	ListUpvoted(ctx context.Context, limit int32) ([]UpvotedRow, error)
	GroupCounts(ctx context.Context) ([]GroupCountsRow, error)
}

// Store provides feedback recording and metric derivation over an
// append-only event log.
type Store struct {
	queries Querier
	logger  log.Logger
}

// New creates a feedback store.
func New(querier Querier, logger log.Logger) *Store {
	return &Store{queries: querier, logger: logger}
}

// AddFeedback appends one event and returns the group's metrics as they
// stand after the append.
func (s *Store) AddFeedback(ctx context.Context, question, sql string, vote Vote) (Metrics, error) {
	if !vote.Valid() {
		return Metrics{}, fmt.Errorf("invalid vote %q", vote)
	}

	err := s.queries.InsertEvent(ctx, InsertEventParams{
		ID:       uuid.NewString(),
		Question: question,
		SQL:      sql,
		Vote:     string(vote),
	})
	if err != nil {
		return Metrics{}, fmt.Errorf("insert feedback event: %w", err)
	}

	metrics, err := s.Metrics(ctx, question)
	if err != nil {
		return Metrics{}, err
	}

	s.logger.Debug("feedback recorded",
		"vote", vote,
		"level", metrics.Level,
		"total", metrics.TotalFeedback)
	return metrics, nil
}

// Metrics computes aggregate metrics for the question's group. Grouping
// is case-insensitive exact match on the question text.
func (s *Store) Metrics(ctx context.Context, question string) (Metrics, error) {
	row, err := s.queries.CountVotes(ctx, question)
	if err != nil {
		return Metrics{}, fmt.Errorf("count votes: %w", err)
	}
	return metricsFromCounts(int(row.Up), int(row.Down)), nil
}

// SimilarExamples returns up to limit up-voted (question, SQL) pairs
// whose question overlaps the given one, most similar first. The exact
// question itself is never returned. A non-positive limit falls back to
// DefaultExampleLimit.
func (s *Store) SimilarExamples(ctx context.Context, question string, limit int) ([]Example, error) {
	if limit <= 0 {
		limit = DefaultExampleLimit
	}

	rows, err := s.queries.ListUpvoted(ctx, upvotedFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list upvoted events: %w", err)
	}

	type scored struct {
		example Example
		score   float64
	}
	var candidates []scored
	for _, row := range rows {
		if strings.EqualFold(row.Question, question) {
			continue
		}
		score := wordOverlap(question, row.Question)
		if score <= similarityFloor {
			continue
		}
		candidates = append(candidates, scored{
			example: Example{Question: row.Question, SQL: row.SQL},
			score:   score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	examples := make([]Example, len(candidates))
	for i, c := range candidates {
		examples[i] = c.example
	}
	return examples, nil
}

// Pattern summarizes a question group that keeps failing.
type Pattern struct {
	Question   string `json:"question"`
	ThumbsUp   int    `json:"thumbs_up"`
	ThumbsDown int    `json:"thumbs_down"`
	Total      int    `json:"total"`
}

// FailedPatterns lists question groups with at least two down votes,
// most down-voted first.
func (s *Store) FailedPatterns(ctx context.Context) ([]Pattern, error) {
	groups, err := s.queries.GroupCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("group counts: %w", err)
	}

	var patterns []Pattern
	for _, g := range groups {
		if g.Down < 2 {
			continue
		}
		patterns = append(patterns, Pattern{
			Question:   g.QuestionKey,
			ThumbsUp:   int(g.Up),
			ThumbsDown: int(g.Down),
			Total:      int(g.Up + g.Down),
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].ThumbsDown > patterns[j].ThumbsDown
	})
	return patterns, nil
}

// OverallStats folds the whole event log into corpus-wide statistics.
func (s *Store) OverallStats(ctx context.Context) (Stats, error) {
	groups, err := s.queries.GroupCounts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("group counts: %w", err)
	}

	var stats Stats
	for _, g := range groups {
		up, down := int(g.Up), int(g.Down)
		stats.ThumbsUp += up
		stats.ThumbsDown += down
		stats.UniqueQueries++
		switch DeriveLevel(up, down) {
		case LevelCritical:
			stats.CriticalQueries++
		case LevelExcellent:
			stats.ExcellentQueries++
		}
	}
	stats.TotalFeedback = stats.ThumbsUp + stats.ThumbsDown
	if stats.TotalFeedback > 0 {
		stats.SuccessRate = float64(stats.ThumbsUp) / float64(stats.TotalFeedback) * 100
	}
	return stats, nil
}
