package feedback

import "strings"

// DeriveLevel maps cumulative vote counts to a performance level.
// Negative signals take priority over positive ones.
func DeriveLevel(up, down int) Level {
	switch {
	case down >= 3:
		return LevelCritical
	case down >= 2:
		return LevelPoor
	case up >= 3:
		return LevelExcellent
	case up >= 2:
		return LevelGood
	default:
		return LevelNeutral
	}
}

// metricsFromCounts folds raw vote counts into Metrics.
func metricsFromCounts(up, down int) Metrics {
	total := up + down
	var rate float64
	if total > 0 {
		rate = float64(up) / float64(total) * 100
	}
	return Metrics{
		ThumbsUp:      up,
		ThumbsDown:    down,
		TotalFeedback: total,
		SuccessRate:   rate,
		Level:         DeriveLevel(up, down),
	}
}

// StatusMessage is the human-readable note attached to a feedback
// acknowledgement, keyed by the group's current performance level.
func (m Metrics) StatusMessage() string {
	switch m.Level {
	case LevelCritical:
		return "This query pattern has repeated failures and needs attention."
	case LevelPoor:
		return "This query pattern is underperforming."
	case LevelExcellent:
		return "This query pattern is performing excellently."
	case LevelGood:
		return "This query pattern is performing well."
	default:
		return "Feedback recorded."
	}
}

// wordOverlap computes Jaccard similarity between the whitespace-split,
// lowercased word sets of a and b. Returns 0 when either set is empty.
func wordOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersect := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersect++
		}
	}
	union := len(setA) + len(setB) - intersect
	if union == 0 {
		return 0
	}
	return float64(intersect) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
