// Package schema introspects the public Postgres schema and renders it
// as the text block fed to the SQL generator. The rendered form is
// cached in memory; Refresh re-reads it after DDL changes.
package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// internalTables are managed by this service and hidden from the
// generator's view of the database.
var internalTables = map[string]bool{
	"cache_entries":     true,
	"feedback_events":   true,
	"schema_migrations": true,
}

// Provider reads and caches the database schema description.
type Provider struct {
	pool *pgxpool.Pool

	mu       sync.RWMutex
	rendered string
}

// NewProvider creates a schema provider over the pool.
func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Schema returns the rendered schema description, introspecting on
// first use.
func (p *Provider) Schema(ctx context.Context) (string, error) {
	p.mu.RLock()
	cached := p.rendered
	p.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}
	return p.Refresh(ctx)
}

// Refresh re-reads the schema from information_schema and replaces the
// cached rendering.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	rendered, err := p.introspect(ctx)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.rendered = rendered
	p.mu.Unlock()
	return rendered, nil
}

const columnsSQL = `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

// introspect renders every public table as
// "Table: name\nColumns: col (TYPE), ..." blocks separated by blank
// lines, in table-name order.
func (p *Provider) introspect(ctx context.Context) (string, error) {
	rows, err := p.pool.Query(ctx, columnsSQL)
	if err != nil {
		return "", fmt.Errorf("introspect schema: %w", err)
	}
	defer rows.Close()

	var (
		blocks  []string
		current string
		cols    []string
	)
	flush := func() {
		if current == "" {
			return
		}
		blocks = append(blocks, fmt.Sprintf("Table: %s\nColumns: %s",
			current, strings.Join(cols, ", ")))
	}
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", fmt.Errorf("introspect schema: %w", err)
		}
		if internalTables[table] {
			continue
		}
		if table != current {
			flush()
			current = table
			cols = cols[:0]
		}
		cols = append(cols, fmt.Sprintf("%s (%s)", column, strings.ToUpper(dataType)))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("introspect schema: %w", err)
	}
	flush()

	return strings.Join(blocks, "\n\n"), nil
}
