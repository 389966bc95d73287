package feedback

import "time"

// Vote is a single thumbs-up or thumbs-down judgement.
type Vote string

// Valid vote values.
const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// Valid reports whether v is a recognized vote value.
func (v Vote) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Event is one immutable feedback record. Events are append-only and
// created exactly once per user submission.
type Event struct {
	ID        string
	Question  string
	SQL       string
	Vote      Vote
	CreatedAt time.Time
}

// Level is the categorical performance label derived from cumulative votes
// for a question group.
type Level string

// Performance levels, ordered from best to worst standing.
const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelNeutral   Level = "neutral"
	LevelPoor      Level = "poor"
	LevelCritical  Level = "critical"
)

// Metrics are aggregate feedback numbers for one question group.
// They are always computed from the event log at read time, never stored.
type Metrics struct {
	ThumbsUp      int     `json:"thumbs_up"`
	ThumbsDown    int     `json:"thumbs_down"`
	TotalFeedback int     `json:"total_feedback"`
	SuccessRate   float64 `json:"success_rate"` // percentage, 0 when no feedback
	Level         Level   `json:"performance_level"`
}

// Example is a prior successful (question, SQL) pair used as few-shot
// guidance during generation.
type Example struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// Stats aggregates feedback across all question groups.
type Stats struct {
	TotalFeedback    int     `json:"total_feedback"`
	ThumbsUp         int     `json:"thumbs_up"`
	ThumbsDown       int     `json:"thumbs_down"`
	SuccessRate      float64 `json:"success_rate"`
	UniqueQueries    int     `json:"unique_queries"`
	CriticalQueries  int     `json:"critical_queries"`
	ExcellentQueries int     `json:"excellent_queries"`
}
