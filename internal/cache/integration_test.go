package cache

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/internal/log"
	"github.com/sqlmind/sqlmind/internal/testutil"
)

// embeddingDim must match the vector(768) column in the schema.
const embeddingDim = 768

func TestStore_Postgres(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	g := genkit.Init(ctx)
	mock := testutil.NewMockEmbedder(embeddingDim)
	store := New(NewQueries(db.Pool), mock.RegisterEmbedder(g), Config{}, log.NewNop())

	t.Run("lookup on empty cache misses", func(t *testing.T) {
		match, err := store.Lookup(ctx, "show me all customers")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("insert then lookup same question hits", func(t *testing.T) {
		_, err := store.Insert(ctx, "show me all customers", "SELECT * FROM customers")
		require.NoError(t, err)

		match, err := store.Lookup(ctx, "show me all customers")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "SELECT * FROM customers", match.Entry.SQL)
		assert.InDelta(t, 1.0, match.Similarity, 1e-3)
	})

	t.Run("unrelated question misses", func(t *testing.T) {
		// Orthogonal vectors: similarity 0.
		vec := make([]float32, embeddingDim)
		vec[1] = 1
		mock.SetVector("what is the total revenue", vec)

		match, err := store.Lookup(ctx, "what is the total revenue")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("count reflects inserts only", func(t *testing.T) {
		before, err := store.Count(ctx)
		require.NoError(t, err)

		_, err = store.Insert(ctx, "find credit card sales", "SELECT * FROM sales WHERE payment_method = 'Credit Card'")
		require.NoError(t, err)

		after, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
	})

	t.Run("exact tie surfaces most recent entry", func(t *testing.T) {
		vec := make([]float32, embeddingDim)
		vec[2] = 1
		mock.SetVector("duplicate question", vec)

		_, err := store.Insert(ctx, "duplicate question", "SELECT 'first'")
		require.NoError(t, err)
		second, err := store.Insert(ctx, "duplicate question", "SELECT 'second'")
		require.NoError(t, err)

		match, err := store.Lookup(ctx, "duplicate question")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, second.ID, match.Entry.ID)
	})
}
