package retrieval

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// newDoc 创建测试文档
func newDoc(id, source string) *schema.Document {
	return &schema.Document{
		ID:       id,
		Content:  "content of " + id,
		MetaData: map[string]any{"source": source},
	}
}

func ids(docs []*schema.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// ========== Mock Retriever ==========

type mockRetriever struct {
	documents []*schema.Document
	err       error

	lastQuery string
	lastTopK  int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	m.lastQuery = query
	options := retriever.GetCommonOptions(&retriever.Options{}, opts...)
	if options.TopK != nil {
		m.lastTopK = *options.TopK
	}
	if m.err != nil {
		return nil, m.err
	}
	docs := m.documents
	if m.lastTopK > 0 && len(docs) > m.lastTopK {
		docs = docs[:m.lastTopK]
	}
	return docs, nil
}

// stageReply 按提示词区分改写与重排调用
func stageReply(reformulated, ranking string, rerankErr error) func([]*schema.Message) (string, error) {
	return func(msgs []*schema.Message) (string, error) {
		prompt := msgs[len(msgs)-1].Content
		if strings.Contains(prompt, "semantic reranker") {
			return ranking, rerankErr
		}
		return reformulated, nil
	}
}
