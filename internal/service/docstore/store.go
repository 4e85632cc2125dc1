// Package docstore 文档分块的向量存储
// 提供内存和 Elasticsearch 两种实现，检索结果按余弦相似度降序，分数相同时按写入顺序
package docstore

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/oklog/ulid/v2"
)

// MetaSource 分块来源的元数据键
const MetaSource = "source"

var (
	// ErrNotFound 分块不存在
	ErrNotFound = errors.New("chunk not found")
	// ErrMissingVector 分块缺少向量
	ErrMissingVector = errors.New("chunk has no dense vector")
	// ErrDimensionMismatch 向量维度不一致
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Store 分块存储
// 写入的分块需携带 DenseVector，Search 返回的文档通过 Score() 携带相似度
type Store interface {
	Add(ctx context.Context, docs []*schema.Document) ([]string, error)
	Update(ctx context.Context, ids []string, docs []*schema.Document) error
	Delete(ctx context.Context, ids []string) error
	Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error)
}

// SourceDeleter 可按来源批量删除的存储
type SourceDeleter interface {
	DeleteBySource(ctx context.Context, source string) (int, error)
}

// NewID 生成分块 ID，同一进程内单调递增，字典序即写入顺序
func NewID() string {
	return ulid.Make().String()
}

// Cosine 余弦相似度，任一向量为零向量时返回 0
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SourceOf 分块来源
func SourceOf(doc *schema.Document) string {
	if doc == nil || doc.MetaData == nil {
		return ""
	}
	s, _ := doc.MetaData[MetaSource].(string)
	return s
}

// cloneDoc 复制文档及业务元数据
// 以下划线开头的内部键（向量、分数）不复制
func cloneDoc(doc *schema.Document) *schema.Document {
	out := &schema.Document{ID: doc.ID, Content: doc.Content, MetaData: map[string]any{}}
	for k, v := range doc.MetaData {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out.MetaData[k] = v
	}
	return out
}
