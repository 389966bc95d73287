package cache

import "time"

// Entry is one immutable cache record pairing a natural-language question
// with the SQL that answered it. Entries are never updated in place.
type Entry struct {
	ID        string    // Unique identifier
	Question  string    // Original natural-language text
	SQL       string    // SQL statement associated with the question
	CreatedAt time.Time // Insertion timestamp
}

// Match is a successful cache lookup: the stored entry plus its cosine
// similarity to the incoming question.
type Match struct {
	Entry      Entry
	Similarity float32 // Cosine similarity score (0-1)
}
