package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/db"
	"github.com/sqlmind/sqlmind/internal/testutil"
)

func TestExecutor_Postgres(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, db.Seed(ctx, tdb.Pool))

	exec := New(tdb.Pool, 0, testutil.DiscardLogger())

	t.Run("select returns ordered columns and rows", func(t *testing.T) {
		result, err := exec.Execute(ctx, "SELECT first_name, state FROM customers WHERE state = 'CA' ORDER BY first_name")
		require.NoError(t, err)

		assert.Equal(t, []string{"first_name", "state"}, result.Columns)
		require.NotEmpty(t, result.Rows)
		for _, row := range result.Rows {
			assert.Equal(t, "CA", row["state"])
		}
	})

	t.Run("empty result set keeps columns", func(t *testing.T) {
		result, err := exec.Execute(ctx, "SELECT first_name FROM customers WHERE state = 'ZZ'")
		require.NoError(t, err)
		assert.Equal(t, []string{"first_name"}, result.Columns)
		assert.Empty(t, result.Rows)
		assert.Zero(t, result.RowCount())
	})

	t.Run("syntax error is classified", func(t *testing.T) {
		_, err := exec.Execute(ctx, "SELEC * FROM customers")
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, KindSyntax, qerr.Kind)
	})

	t.Run("unknown table is a schema error", func(t *testing.T) {
		_, err := exec.Execute(ctx, "SELECT * FROM no_such_table")
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, KindSchema, qerr.Kind)
	})

	t.Run("unknown column is a schema error", func(t *testing.T) {
		_, err := exec.Execute(ctx, "SELECT no_such_column FROM customers")
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, KindSchema, qerr.Kind)
	})

	t.Run("slow query times out", func(t *testing.T) {
		fast := New(tdb.Pool, 100*time.Millisecond, testutil.DiscardLogger())
		_, err := fast.Execute(ctx, "SELECT pg_sleep(5)")
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, KindTimeout, qerr.Kind)
	})
}
