package retrieval

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
)

// BuildContext 按排序拼接分块文本
func BuildContext(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if text := strings.TrimSpace(doc.Content); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Sources 按排序去重的来源列表
func Sources(docs []*schema.Document) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, doc := range docs {
		src := docstore.SourceOf(doc)
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}
