package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct {
	vec []float64
	err error
}

func (e staticEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.vec, e.err
}

func TestVectorRetriever_Retrieve(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Add(ctx, []*schema.Document{
		chunk("a", 1, 0), chunk("b", 0.9, 0.1), chunk("c", 0.8, 0.2), chunk("d", 0.7, 0.3), chunk("e", 0, 1),
	})
	require.NoError(t, err)

	r := NewRetriever(staticEmbedder{vec: []float64{1, 0}}, s, 0)

	got, err := r.Retrieve(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, contents(got))

	got, err = r.Retrieve(ctx, "anything", retriever.WithTopK(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, contents(got))
}

func TestVectorRetriever_EmbedError(t *testing.T) {
	r := NewRetriever(staticEmbedder{err: errors.New("down")}, NewMemoryStore(), 3)
	_, err := r.Retrieve(context.Background(), "q")
	assert.ErrorContains(t, err, "failed to embed query")
}
