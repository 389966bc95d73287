package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/db"
	"github.com/sqlmind/sqlmind/internal/testutil"
)

func TestProvider_Postgres(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, db.Seed(ctx, tdb.Pool))

	provider := NewProvider(tdb.Pool)

	rendered, err := provider.Schema(ctx)
	require.NoError(t, err)

	assert.Contains(t, rendered, "Table: customers\nColumns: ")
	assert.Contains(t, rendered, "Table: products")
	assert.Contains(t, rendered, "Table: sales")
	assert.Contains(t, rendered, "customer_id (INTEGER)")
	assert.NotContains(t, rendered, "cache_entries", "internal tables stay hidden")
	assert.NotContains(t, rendered, "feedback_events")
	assert.NotContains(t, rendered, "schema_migrations")

	t.Run("refresh picks up new tables", func(t *testing.T) {
		_, err := tdb.Pool.Exec(ctx, "CREATE TABLE returns (return_id SERIAL PRIMARY KEY, reason TEXT)")
		require.NoError(t, err)

		stale, err := provider.Schema(ctx)
		require.NoError(t, err)
		assert.NotContains(t, stale, "Table: returns")

		fresh, err := provider.Refresh(ctx)
		require.NoError(t, err)
		assert.Contains(t, fresh, "Table: returns")
		assert.Contains(t, fresh, "reason (TEXT)")
	})

	t.Run("tables render in name order", func(t *testing.T) {
		rendered, err := provider.Schema(ctx)
		require.NoError(t, err)
		iCustomers := strings.Index(rendered, "Table: customers")
		iSales := strings.Index(rendered, "Table: sales")
		assert.Less(t, iCustomers, iSales)
	})
}
