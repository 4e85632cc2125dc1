package docstore

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(content string, vec ...float64) *schema.Document {
	doc := &schema.Document{Content: content, MetaData: map[string]any{MetaSource: content + ".txt"}}
	return doc.WithDenseVector(vec)
}

func contents(docs []*schema.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}

func TestMemoryStore_SearchOrdersByCosine(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Add(ctx, []*schema.Document{
		chunk("east", 1, 0),
		chunk("north", 0, 1),
		chunk("northeast", 1, 1),
	})
	require.NoError(t, err)

	got, err := s.Search(ctx, []float64{1, 0.1}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "northeast", "north"}, contents(got))
	assert.Greater(t, got[0].Score(), got[1].Score())
	assert.Nil(t, got[0].DenseVector())
	assert.Equal(t, "east.txt", SourceOf(got[0]))
}

func TestMemoryStore_TiesKeepInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third", "fourth"} {
		_, err := s.Add(ctx, []*schema.Document{chunk(name, 1, 1)})
		require.NoError(t, err)
	}

	got, err := s.Search(ctx, []float64{2, 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, contents(got))
}

func TestMemoryStore_SearchBounds(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Search(ctx, []float64{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Add(ctx, []*schema.Document{chunk("a", 1, 0), chunk("b", 0, 1)})
	require.NoError(t, err)

	got, err = s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Search(ctx, []float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Search(ctx, []float64{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryStore_AddValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Add(ctx, []*schema.Document{{Content: "no vector"}})
	assert.ErrorIs(t, err, ErrMissingVector)

	_, err = s.Add(ctx, []*schema.Document{chunk("a", 1, 0), chunk("b", 1, 0, 0)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())

	ids, err := s.Add(ctx, []*schema.Document{chunk("a", 1, 0), chunk("b", 0, 1)})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Less(t, ids[0], ids[1])
}

func TestMemoryStore_UpdateKeepsPosition(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ids, err := s.Add(ctx, []*schema.Document{chunk("a", 1, 0), chunk("b", 1, 0)})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, []string{ids[0]}, []*schema.Document{chunk("a2", 1, 0)}))

	got, err := s.Search(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "b"}, contents(got))
	assert.Equal(t, ids[0], got[0].ID)

	err = s.Update(ctx, []string{"missing"}, []*schema.Document{chunk("x", 1, 0)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ids, err := s.Add(ctx, []*schema.Document{chunk("a", 1, 0), chunk("b", 0, 1)})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, []string{ids[0], "unknown"}))
	got, err := s.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, contents(got))
}

func TestMemoryStore_DeleteBySource(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	docs := []*schema.Document{chunk("a", 1, 0), chunk("b", 0, 1), chunk("c", 1, 1)}
	docs[1].MetaData[MetaSource] = "a.txt"
	_, err := s.Add(ctx, docs)
	require.NoError(t, err)

	n, err := s.DeleteBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Add(ctx, []*schema.Document{chunk("a", 1, 0)})
	require.NoError(t, err)

	got, err := s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	got[0].Content = "mutated"
	got[0].MetaData[MetaSource] = "mutated"

	again, err := s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Content)
	assert.Equal(t, "a.txt", SourceOf(again[0]))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 0}))
}
