package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/service/llm"
)

const reformulatePrompt = `Rephrase this search query to be semantically rich and specific, so that it matches relevant passages in a store knowledge base (products, shipping, returns, payments, policies).
Keep the original intent and language hints. Return only the rephrased query on a single line, without quotes or explanation.

Query: %s`

// Reformulator 查询改写
type Reformulator struct {
	llm *llm.Caller
}

// NewReformulator 创建改写器
func NewReformulator(caller *llm.Caller) *Reformulator {
	return &Reformulator{llm: caller}
}

// Reformulate 改写查询
// 失败或输出为空时返回原查询和失败原因
func (r *Reformulator) Reformulate(ctx context.Context, query string) (string, error) {
	if !r.llm.Available() {
		return query, llm.ErrNoModel
	}

	out, err := r.llm.Generate(ctx, "reformulate", []*schema.Message{
		schema.UserMessage(fmt.Sprintf(reformulatePrompt, query)),
	})
	if err != nil {
		return query, err
	}

	out = strings.Trim(strings.TrimSpace(firstLine(out)), `"'`)
	if out == "" {
		return query, fmt.Errorf("reformulate: empty output")
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
