package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// InsertEntryParams carries one new cache entry.
type InsertEntryParams struct {
	ID        string
	Question  string
	SQL       string
	Embedding pgvector.Vector
	CreatedAt time.Time
}

// NearestEntryRow is the result of a nearest-neighbor search.
type NearestEntryRow struct {
	ID         string
	Question   string
	SQL        string
	CreatedAt  time.Time
	Similarity float32
}

// Queries implements Querier against PostgreSQL + pgvector.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries creates a Queries bound to a connection pool.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const insertEntrySQL = `
INSERT INTO cache_entries (id, question, sql, embedding, created_at)
VALUES ($1, $2, $3, $4, $5)
`

// InsertEntry appends a new cache entry.
func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) error {
	_, err := q.pool.Exec(ctx, insertEntrySQL,
		arg.ID, arg.Question, arg.SQL, arg.Embedding, arg.CreatedAt)
	return err
}

// nearestEntrySQL orders by cosine distance ascending; created_at DESC
// breaks exact-distance ties in favor of the most recent entry.
const nearestEntrySQL = `
SELECT id, question, sql, created_at, 1 - (embedding <=> $1) AS similarity
FROM cache_entries
ORDER BY embedding <=> $1, created_at DESC
LIMIT 1
`

// NearestEntry returns the closest stored entry, or nil when the cache is empty.
func (q *Queries) NearestEntry(ctx context.Context, embedding pgvector.Vector) (*NearestEntryRow, error) {
	var row NearestEntryRow
	err := q.pool.QueryRow(ctx, nearestEntrySQL, embedding).Scan(
		&row.ID, &row.Question, &row.SQL, &row.CreatedAt, &row.Similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountEntries returns the total number of cache entries.
func (q *Queries) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&n)
	return n, err
}
