package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/internal/testutil"
)

type fakeQuerier struct {
	events  []InsertEventParams
	failure error
}

func (f *fakeQuerier) InsertEvent(_ context.Context, arg InsertEventParams) error {
	if f.failure != nil {
		return f.failure
	}
	f.events = append(f.events, arg)
	return nil
}

func (f *fakeQuerier) CountVotes(_ context.Context, question string) (CountVotesRow, error) {
	if f.failure != nil {
		return CountVotesRow{}, f.failure
	}
	var row CountVotesRow
	for _, e := range f.events {
		if !strings.EqualFold(e.Question, question) {
			continue
		}
		if e.Vote == "up" {
			row.Up++
		} else {
			row.Down++
		}
	}
	return row, nil
}

func (f *fakeQuerier) ListUpvoted(_ context.Context, limit int32) ([]UpvotedRow, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	seen := make(map[string]bool)
	var out []UpvotedRow
	for _, e := range f.events {
		if e.Vote != "up" {
			continue
		}
		key := strings.ToLower(e.Question) + "\x00" + e.SQL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, UpvotedRow{Question: e.Question, SQL: e.SQL})
		if len(out) == int(limit) {
			break
		}
	}
	return out, nil
}

func (f *fakeQuerier) GroupCounts(_ context.Context) ([]GroupCountsRow, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	idx := make(map[string]int)
	var out []GroupCountsRow
	for _, e := range f.events {
		key := strings.ToLower(e.Question)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, GroupCountsRow{QuestionKey: key})
		}
		if e.Vote == "up" {
			out[i].Up++
		} else {
			out[i].Down++
		}
	}
	return out, nil
}

func newTestStore() (*Store, *fakeQuerier) {
	q := &fakeQuerier{}
	return New(q, testutil.DiscardLogger()), q
}

func TestDeriveLevel(t *testing.T) {
	tests := []struct {
		name     string
		up, down int
		want     Level
	}{
		{"three downs critical", 0, 3, LevelCritical},
		{"two downs poor", 0, 2, LevelPoor},
		{"three ups excellent", 3, 0, LevelExcellent},
		{"two ups good", 2, 0, LevelGood},
		{"mixed single neutral", 1, 1, LevelNeutral},
		{"no votes neutral", 0, 0, LevelNeutral},
		{"downs outrank ups", 5, 3, LevelCritical},
		{"two downs beat three ups", 3, 2, LevelPoor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveLevel(tt.up, tt.down))
		})
	}
}

func TestAddFeedbackReturnsFreshMetrics(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	m, err := store.AddFeedback(ctx, "show sales", "SELECT * FROM sales", VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalFeedback)
	assert.Equal(t, LevelNeutral, m.Level)

	m, err = store.AddFeedback(ctx, "show sales", "SELECT * FROM sales", VoteUp)
	require.NoError(t, err)
	assert.Equal(t, LevelGood, m.Level)

	m, err = store.AddFeedback(ctx, "Show Sales", "SELECT * FROM sales", VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 3, m.ThumbsUp, "grouping is case-insensitive")
	assert.Equal(t, LevelExcellent, m.Level)
}

func TestAddFeedbackRejectsInvalidVote(t *testing.T) {
	store, q := newTestStore()

	_, err := store.AddFeedback(context.Background(), "q", "SELECT 1", Vote("maybe"))
	require.Error(t, err)
	assert.Empty(t, q.events, "nothing persisted on invalid vote")
}

func TestMetricsSuccessRate(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	m, err := store.Metrics(ctx, "unseen question")
	require.NoError(t, err)
	assert.Zero(t, m.SuccessRate)
	assert.Zero(t, m.TotalFeedback)

	votes := []Vote{VoteUp, VoteUp, VoteUp, VoteDown}
	for _, v := range votes {
		_, err := store.AddFeedback(ctx, "rated question", "SELECT 1", v)
		require.NoError(t, err)
	}

	m, err = store.Metrics(ctx, "rated question")
	require.NoError(t, err)
	assert.InDelta(t, 75.0, m.SuccessRate, 1e-9)
}

func TestMetricsReadIsIdempotent(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.AddFeedback(ctx, "q", "SELECT 1", VoteDown)
	require.NoError(t, err)

	first, err := store.Metrics(ctx, "q")
	require.NoError(t, err)
	second, err := store.Metrics(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimilarExamples(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	seed := []struct {
		question string
		sql      string
		vote     Vote
	}{
		{"show me all customers from California", "SELECT * FROM customers WHERE state = 'CA'", VoteUp},
		{"show me all customers from Texas", "SELECT * FROM customers WHERE state = 'TX'", VoteUp},
		{"show me all customers from Texas", "SELECT * FROM customers WHERE state = 'TX'", VoteUp},
		{"total revenue by month", "SELECT date_trunc('month', sale_date), SUM(total_amount) FROM sales GROUP BY 1", VoteUp},
		{"show me all customers from Nevada", "SELECT * FROM customers WHERE state = 'NV'", VoteDown},
	}
	for _, s := range seed {
		_, err := store.AddFeedback(ctx, s.question, s.sql, s.vote)
		require.NoError(t, err)
	}

	examples, err := store.SimilarExamples(ctx, "show me all customers from California", 0)
	require.NoError(t, err)

	questions := make([]string, len(examples))
	for i, e := range examples {
		questions[i] = e.Question
	}
	assert.NotContains(t, questions, "show me all customers from California",
		"the exact question is excluded")
	assert.Contains(t, questions, "show me all customers from Texas")
	assert.NotContains(t, questions, "total revenue by month", "below overlap floor")
	assert.NotContains(t, questions, "show me all customers from Nevada", "down-voted")
	assert.Len(t, examples, 1, "duplicate upvotes collapse to one example")
}

func TestSimilarExamplesRespectsLimit(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	states := []string{"Texas", "Nevada", "Oregon", "Utah", "Idaho"}
	for _, s := range states {
		_, err := store.AddFeedback(ctx,
			"show me all customers from "+s,
			"SELECT * FROM customers", VoteUp)
		require.NoError(t, err)
	}

	examples, err := store.SimilarExamples(ctx, "show me all customers from California", 2)
	require.NoError(t, err)
	assert.Len(t, examples, 2)
}

func TestOverallStats(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	seed := []struct {
		question string
		vote     Vote
		times    int
	}{
		{"good query", VoteUp, 3},
		{"bad query", VoteDown, 3},
		{"meh query", VoteUp, 1},
	}
	for _, s := range seed {
		for range s.times {
			_, err := store.AddFeedback(ctx, s.question, "SELECT 1", s.vote)
			require.NoError(t, err)
		}
	}

	stats, err := store.OverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalFeedback)
	assert.Equal(t, 4, stats.ThumbsUp)
	assert.Equal(t, 3, stats.ThumbsDown)
	assert.Equal(t, 3, stats.UniqueQueries)
	assert.Equal(t, 1, stats.CriticalQueries)
	assert.Equal(t, 1, stats.ExcellentQueries)
	assert.InDelta(t, 4.0/7.0*100, stats.SuccessRate, 1e-9)
}

func TestFailedPatterns(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	seed := []struct {
		question string
		vote     Vote
		times    int
	}{
		{"very broken", VoteDown, 3},
		{"slightly broken", VoteDown, 2},
		{"one-off miss", VoteDown, 1},
		{"fine query", VoteUp, 3},
	}
	for _, s := range seed {
		for range s.times {
			_, err := store.AddFeedback(ctx, s.question, "SELECT 1", s.vote)
			require.NoError(t, err)
		}
	}

	patterns, err := store.FailedPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "very broken", patterns[0].Question)
	assert.Equal(t, 3, patterns[0].ThumbsDown)
	assert.Equal(t, "slightly broken", patterns[1].Question)
}

func TestOverallStatsEmpty(t *testing.T) {
	store, _ := newTestStore()

	stats, err := store.OverallStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFeedback)
	assert.Zero(t, stats.SuccessRate)
}

func TestStorePropagatesQuerierErrors(t *testing.T) {
	store, q := newTestStore()
	q.failure = errors.New("connection refused")

	_, err := store.AddFeedback(context.Background(), "q", "SELECT 1", VoteUp)
	assert.Error(t, err)

	_, err = store.Metrics(context.Background(), "q")
	assert.Error(t, err)

	_, err = store.SimilarExamples(context.Background(), "q", 3)
	assert.Error(t, err)
}

func TestStatusMessage(t *testing.T) {
	assert.Contains(t, metricsFromCounts(0, 3).StatusMessage(), "repeated failures")
	assert.Contains(t, metricsFromCounts(3, 0).StatusMessage(), "excellently")
	assert.Equal(t, "Feedback recorded.", metricsFromCounts(0, 0).StatusMessage())
}

func TestWordOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, wordOverlap("show sales", "Show Sales"), 1e-9)
	assert.Zero(t, wordOverlap("", "anything"))
	assert.Zero(t, wordOverlap("alpha beta", "gamma delta"))
	// 5 shared of 7 total words.
	got := wordOverlap(
		"show me all customers from California",
		"show me all customers from Texas")
	assert.InDelta(t, 5.0/7.0, got, 1e-9)
}
