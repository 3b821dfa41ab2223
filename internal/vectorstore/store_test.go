package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat-go/internal/apperr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestBuildAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := []string{"about cats", "about dogs", "about fish"}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	require.NoError(t, store.Build(ctx, "doc-1", chunks, vectors))

	results, err := store.Search(ctx, "doc-1", []float32{0, 0.9, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "about dogs", results[0])
	assert.Equal(t, "about fish", results[1])
}

func TestSearchTopKClamped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Build(ctx, "doc-1",
		[]string{"only chunk"}, [][]float32{{1, 0}}))

	results, err := store.Search(ctx, "doc-1", []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"only chunk"}, results)
}

func TestBuildReplacesExistingIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Build(ctx, "doc-1",
		[]string{"old a", "old b"}, [][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, store.Build(ctx, "doc-1",
		[]string{"new"}, [][]float32{{1, 0}}))

	results, err := store.Search(ctx, "doc-1", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, results, "rebuild must replace, not accumulate")
}

func TestSearchMissingIndex(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Search(context.Background(), "no-such-doc", []float32{1}, 4)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDocumentNotIndexed, apperr.KindOf(err))
}

func TestBuildRejectsEmpty(t *testing.T) {
	store := newTestStore(t)

	err := store.Build(context.Background(), "doc-1", nil, nil)
	require.Error(t, err)
	assert.False(t, store.Exists("doc-1"), "a failed build must not leave an index behind")
}

func TestBuildRejectsMismatchedLengths(t *testing.T) {
	store := newTestStore(t)

	err := store.Build(context.Background(), "doc-1",
		[]string{"a", "b"}, [][]float32{{1}})
	require.Error(t, err)
	assert.False(t, store.Exists("doc-1"))
}

func TestIndexPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"", "../evil", "a/b", `a\b`} {
		_, err := store.Search(context.Background(), id, []float32{1}, 4)
		require.Error(t, err, "id: %q", id)
	}
}

func TestExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Exists("doc-1"))
	require.NoError(t, store.Build(ctx, "doc-1", []string{"c"}, [][]float32{{1}}))
	assert.True(t, store.Exists("doc-1"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}), "dimension mismatch")
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
