package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/service/llm"
)

const rerankPrompt = `You are an expert semantic reranker. Given a user query and a list of numbered passages, order the passages by how well they answer the query.

Query: %s

Passages:
%s
Return a list of indexes (0-based) of the passages, most relevant first, separated by commas. Return only the indexes.`

var intPattern = regexp.MustCompile(`\d+`)

// Reranker LLM 重排
type Reranker struct {
	llm          *llm.Caller
	previewChars int
}

// NewReranker 创建重排器，每个分块只发送前 previewChars 个字符
func NewReranker(caller *llm.Caller, previewChars int) *Reranker {
	if previewChars <= 0 {
		previewChars = defaultPreviewChars
	}
	return &Reranker{llm: caller, previewChars: previewChars}
}

// Rerank 按模型给出的序号重排
// 模型失败或没有可用序号时保持原顺序，同时返回原因
func (r *Reranker) Rerank(ctx context.Context, query string, docs []*schema.Document) ([]*schema.Document, error) {
	if len(docs) < 2 {
		return docs, nil
	}
	if !r.llm.Available() {
		return docs, llm.ErrNoModel
	}

	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n", i, preview(doc.Content, r.previewChars))
	}

	out, err := r.llm.Generate(ctx, "rerank", []*schema.Message{
		schema.UserMessage(fmt.Sprintf(rerankPrompt, query, sb.String())),
	})
	if err != nil {
		return docs, err
	}

	order := ParseIndices(out, len(docs))
	if len(order) == 0 {
		return docs, fmt.Errorf("rerank: no usable indexes in %q", preview(out, 80))
	}
	return applyOrder(docs, order), nil
}

// ParseIndices 按出现顺序提取 [0,n) 内的整数，去重
func ParseIndices(s string, n int) []int {
	seen := make(map[int]bool, n)
	var out []int
	for _, m := range intPattern.FindAllString(s, -1) {
		v, err := strconv.Atoi(m)
		if err != nil || v < 0 || v >= n || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// applyOrder 排序中未提及的分块保持原相对顺序，追加在后
func applyOrder(docs []*schema.Document, order []int) []*schema.Document {
	out := make([]*schema.Document, 0, len(docs))
	used := make([]bool, len(docs))
	for _, i := range order {
		out = append(out, docs[i])
		used[i] = true
	}
	for i, doc := range docs {
		if !used[i] {
			out = append(out, doc)
		}
	}
	return out
}

// preview 截取前 n 个字符
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
