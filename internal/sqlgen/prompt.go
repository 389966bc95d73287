package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sqlmind/sqlmind/internal/feedback"
)

// Request carries everything the prompt needs for one generation.
type Request struct {
	Question string
	Schema   string
	Metrics  feedback.Metrics
	Examples []feedback.Example
}

// buildPrompt assembles the generation prompt: question, schema, an
// optional performance-context block, and optional few-shot examples.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a SQL query for: %s\n\n", req.Question)
	b.WriteString("Database Schema:\n")
	b.WriteString(req.Schema)
	b.WriteString("\n")
	b.WriteString(performanceContext(req.Metrics))
	b.WriteString(examplesContext(req.Examples))
	b.WriteString("\nReturn ONLY the SQL query, no explanations.")
	return b.String()
}

// performanceContext renders the feedback warning or encouragement for
// the question's group. Only neutral groups add nothing.
func performanceContext(m feedback.Metrics) string {
	switch m.Level {
	case feedback.LevelCritical:
		return fmt.Sprintf(
			"\nCRITICAL WARNING: Similar queries have failed %d times.\n"+
				"Previous attempts were incorrect. Be extra careful with this query type.\n",
			m.ThumbsDown)
	case feedback.LevelPoor:
		return fmt.Sprintf(
			"\nWARNING: Similar queries have %d failures.\n"+
				"Review the query carefully before generating.\n",
			m.ThumbsDown)
	case feedback.LevelExcellent:
		return fmt.Sprintf(
			"\nThis query type has %d successes. Continue with similar approach.\n",
			m.ThumbsUp)
	case feedback.LevelGood:
		return fmt.Sprintf(
			"\nThis query type has %d successes. Keep to the established approach.\n",
			m.ThumbsUp)
	default:
		return ""
	}
}

func examplesContext(examples []feedback.Example) string {
	if len(examples) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nSuccessful similar queries for reference:")
	for i, ex := range examples {
		fmt.Fprintf(&b, "\nExample %d:", i+1)
		fmt.Fprintf(&b, "\n  Question: %s", ex.Question)
		fmt.Fprintf(&b, "\n  SQL: %s", ex.SQL)
	}
	b.WriteString("\n")
	return b.String()
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag, from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
