package feedback

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// upvotedFetchLimit bounds how many up-voted events are pulled back for
// in-process similarity scoring.
const upvotedFetchLimit = 200

// InsertEventParams are the fields for one new feedback event.
type InsertEventParams struct {
	ID       string
	Question string
	SQL      string
	Vote     string
}

// CountVotesRow holds vote counts for a single question group.
type CountVotesRow struct {
	Up   int64
	Down int64
}

// UpvotedRow is one up-voted (question, SQL) pair.
type UpvotedRow struct {
	Question string
	SQL      string
}

// GroupCountsRow holds vote counts for one question group in a full scan.
type GroupCountsRow struct {
	QuestionKey string
	Up          int64
	Down        int64
}

// Queries implements Querier against Postgres.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries creates a Postgres-backed Querier.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const insertEventSQL = `
INSERT INTO feedback_events (id, question, sql, vote)
VALUES ($1, $2, $3, $4)`

func (q *Queries) InsertEvent(ctx context.Context, arg InsertEventParams) error {
	_, err := q.pool.Exec(ctx, insertEventSQL, arg.ID, arg.Question, arg.SQL, arg.Vote)
	return err
}

const countVotesSQL = `
SELECT
    COUNT(*) FILTER (WHERE vote = 'up')   AS up,
    COUNT(*) FILTER (WHERE vote = 'down') AS down
FROM feedback_events
WHERE lower(question) = lower($1)`

func (q *Queries) CountVotes(ctx context.Context, question string) (CountVotesRow, error) {
	var row CountVotesRow
	err := q.pool.QueryRow(ctx, countVotesSQL, question).Scan(&row.Up, &row.Down)
	if err != nil {
		return CountVotesRow{}, err
	}
	return row, nil
}

const listUpvotedSQL = `
SELECT DISTINCT ON (lower(question), sql) question, sql
FROM feedback_events
WHERE vote = 'up'
ORDER BY lower(question), sql, created_at DESC
LIMIT $1`

func (q *Queries) ListUpvoted(ctx context.Context, limit int32) ([]UpvotedRow, error) {
	rows, err := q.pool.Query(ctx, listUpvotedSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UpvotedRow
	for rows.Next() {
		var r UpvotedRow
		if err := rows.Scan(&r.Question, &r.SQL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const groupCountsSQL = `
SELECT
    lower(question) AS question_key,
    COUNT(*) FILTER (WHERE vote = 'up')   AS up,
    COUNT(*) FILTER (WHERE vote = 'down') AS down
FROM feedback_events
GROUP BY lower(question)`

func (q *Queries) GroupCounts(ctx context.Context) ([]GroupCountsRow, error) {
	rows, err := q.pool.Query(ctx, groupCountsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCountsRow
	for rows.Next() {
		var r GroupCountsRow
		if err := rows.Scan(&r.QuestionKey, &r.Up, &r.Down); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
