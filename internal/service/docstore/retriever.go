package docstore

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// QueryEmbedder 查询向量化
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorRetriever 将 Store 适配为 eino retriever.Retriever
type VectorRetriever struct {
	embedder QueryEmbedder
	store    Store
	topK     int
}

var _ retriever.Retriever = (*VectorRetriever)(nil)

// NewRetriever 创建检索器，topK <= 0 时取 4
func NewRetriever(embedder QueryEmbedder, store Store, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &VectorRetriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve 向量化查询并检索，支持 retriever.WithTopK
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := r.topK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.store.Search(ctx, vec, *options.TopK)
}
