package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("search ranks by term overlap", func(t *testing.T) {
		store := NewInMemoryStore()

		require.NoError(t, store.Store(ctx, "Amex Blue Cash Preferred gives 3% cashback on electronics.", map[string]any{"kind": "card"}))
		require.NoError(t, store.Store(ctx, "Discover it rotates 5% cashback categories quarterly.", nil))
		require.NoError(t, store.Store(ctx, "Store return policy is 30 days.", nil))

		results, err := store.Search(ctx, "electronics cashback", 5)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Contains(t, results[0].Content, "Amex Blue Cash Preferred")
		assert.Equal(t, 1.0, results[0].Score)
		assert.Contains(t, results[1].Content, "Discover it")
		assert.InDelta(t, 0.5, results[1].Score, 1e-9)
		assert.Equal(t, "card", results[0].Metadata["kind"])
	})

	t.Run("limit caps results", func(t *testing.T) {
		store := NewInMemoryStore()

		require.NoError(t, store.Store(ctx, "cashback card one", nil))
		require.NoError(t, store.Store(ctx, "cashback card two", nil))
		require.NoError(t, store.Store(ctx, "cashback card three", nil))

		results, err := store.Search(ctx, "cashback", 2)

		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		store := NewInMemoryStore()

		require.NoError(t, store.Store(ctx, "nothing relevant here", nil))

		results, err := store.Search(ctx, "quantum", 3)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		store := NewInMemoryStore()

		require.NoError(t, store.Store(ctx, "alpha", nil))
		require.NoError(t, store.Store(ctx, "beta", nil))

		results, err := store.Search(ctx, "", 10)

		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("long documents are chunked", func(t *testing.T) {
		store := NewInMemoryStore(func(o *InMemoryStoreOptions) {
			o.ChunkSize = 10
			o.ChunkOverlap = 2
		})

		require.NoError(t, store.Store(ctx, strings.Repeat("abcde", 5), nil))

		assert.Greater(t, store.Len(), 1)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		store := NewInMemoryStore()

		require.NoError(t, store.Store(ctx, "doc", nil))

		assert.Equal(t, 1, store.Clear())
		assert.Equal(t, 0, store.Len())
	})
}

func TestChunkText(t *testing.T) {
	t.Run("short text single chunk", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, ChunkText("hello", 500, 50))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, ChunkText("", 500, 50))
	})

	t.Run("overlapping chunks cover the text", func(t *testing.T) {
		chunks := ChunkText("abcdefghij", 4, 1)

		require.NotEmpty(t, chunks)
		assert.Equal(t, "abcd", chunks[0])
		assert.Equal(t, "defg", chunks[1])

		var rebuilt strings.Builder
		for i, c := range chunks {
			if i == 0 {
				rebuilt.WriteString(c)
				continue
			}
			rebuilt.WriteString(c[1:])
		}
		assert.Equal(t, "abcdefghij", rebuilt.String())
	})
}
