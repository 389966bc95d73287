// Package executor runs SQL against Postgres and returns results in a
// transport-friendly shape. Queries are passed through untouched; the
// package adds only a deadline and failure classification.
package executor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlmind/sqlmind/internal/log"
)

// DefaultTimeout bounds one query execution.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of a successful execution. Columns preserve the
// result set's order; Rows hold column-name keyed values.
type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// RowCount returns the number of returned rows.
func (r *Result) RowCount() int {
	return len(r.Rows)
}

// Executor runs read queries on a connection pool.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  log.Logger
}

// New creates an executor. A non-positive timeout falls back to
// DefaultTimeout.
func New(pool *pgxpool.Pool, timeout time.Duration, logger log.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{pool: pool, timeout: timeout, logger: logger}
}

// Execute runs the SQL and collects the full result set. Failures come
// back as *QueryError carrying the classified kind.
func (e *Executor) Execute(ctx context.Context, sql string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return nil, &QueryError{Kind: classify(err), SQL: sql, Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &QueryError{Kind: classify(err), SQL: sql, Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Kind: classify(err), SQL: sql, Err: err}
	}

	e.logger.Debug("query executed",
		"rows", len(result.Rows),
		"duration", time.Since(start))
	return result, nil
}
