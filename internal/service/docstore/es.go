package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/cloudwego/eino-ext/components/indexer/es8"
	es8retriever "github.com/cloudwego/eino-ext/components/retriever/es8"
	"github.com/cloudwego/eino-ext/components/retriever/es8/search_mode"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"go.uber.org/zap"
)

const (
	fieldContent = "content"
	fieldVector  = "content_vector"
)

// ESConfig Elasticsearch 存储配置
type ESConfig struct {
	Index      string
	Dimensions int
	BatchSize  int
}

// ESStore 基于 Elasticsearch dense_vector 的分块存储
// 写入走 eino es8 索引器，检索走 es8 检索器
type ESStore struct {
	client    *elasticsearch.Client
	index     string
	dims      int
	indexer   *es8.Indexer
	retriever *es8retriever.Retriever
	log       *zap.Logger
}

// NewESClient 创建 ES8 客户端
func NewESClient(addr, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  username,
		Password:  password,
	})
}

// NewESStore 创建 ES 存储
// embedder 仅在分块未携带向量时使用
func NewESStore(ctx context.Context, client *elasticsearch.Client, cfg ESConfig, embedder embedding.Embedder, log *zap.Logger) (*ESStore, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}

	indexer, err := es8.NewIndexer(ctx, &es8.IndexerConfig{
		Client:           client,
		Index:            cfg.Index,
		BatchSize:        cfg.BatchSize,
		Embedding:        embedder,
		DocumentToFields: documentToFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES8 indexer: %w", err)
	}

	r, err := es8retriever.NewRetriever(ctx, &es8retriever.RetrieverConfig{
		Client:       client,
		Index:        cfg.Index,
		TopK:         4,
		SearchMode:   search_mode.SearchModeDenseVectorSimilarity(search_mode.DenseVectorSimilarityTypeCosineSimilarity, fieldVector),
		Embedding:    embedder,
		ResultParser: parseHit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES8 retriever: %w", err)
	}

	return &ESStore{
		client:    client,
		index:     cfg.Index,
		dims:      cfg.Dimensions,
		indexer:   indexer,
		retriever: r,
		log:       log,
	}, nil
}

// Add 写入分块，ID 为空时生成 ULID
func (s *ESStore) Add(ctx context.Context, docs []*schema.Document) ([]string, error) {
	batch := make([]*schema.Document, len(docs))
	for i, doc := range docs {
		if len(doc.DenseVector()) == 0 {
			return nil, ErrMissingVector
		}
		d := *doc
		if d.ID == "" {
			d.ID = NewID()
		}
		batch[i] = &d
	}

	ids, err := s.indexer.Store(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// Update 以相同 ID 重新索引，覆盖原文档
func (s *ESStore) Update(ctx context.Context, ids []string, docs []*schema.Document) error {
	if len(ids) != len(docs) {
		return fmt.Errorf("ids and docs length mismatch: %d != %d", len(ids), len(docs))
	}
	batch := make([]*schema.Document, len(docs))
	for i, doc := range docs {
		d := *doc
		d.ID = ids[i]
		batch[i] = &d
	}
	if _, err := s.indexer.Store(ctx, batch); err != nil {
		return fmt.Errorf("failed to reindex chunks: %w", err)
	}
	return s.refresh(ctx)
}

// Delete 删除分块，不存在的 ID 忽略
func (s *ESStore) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		res, err := s.client.Delete(s.index, id, s.client.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to delete chunk %s: %w", id, err)
		}
		drain(res)
		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("failed to delete chunk %s: %s", id, res.Status())
		}
	}
	return s.refresh(ctx)
}

// DeleteBySource 按来源删除
func (s *ESStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"term": map[string]any{MetaSource: source},
		},
	})
	if err != nil {
		return 0, err
	}

	res, err := s.client.DeleteByQuery([]string{s.index}, bytes.NewReader(body),
		s.client.DeleteByQuery.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to delete by source: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("failed to delete by source: %s", res.String())
	}

	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode delete response: %w", err)
	}
	return out.Deleted, s.refresh(ctx)
}

// Search 以给定向量检索
// 分数相同的结果按 ULID 排序，即写入顺序
func (s *ESStore) Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error) {
	if k <= 0 {
		return []*schema.Document{}, nil
	}
	if s.dims > 0 && len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(vector), s.dims)
	}

	docs, err := s.retriever.Retrieve(ctx, "",
		retriever.WithTopK(k),
		retriever.WithEmbedding(fixedVector(vector)))
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score() != docs[j].Score() {
			return docs[i].Score() > docs[j].Score()
		}
		return docs[i].ID < docs[j].ID
	})
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// EnsureIndex 确保索引存在，不存在时按向量维度创建
func (s *ESStore) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	dims := s.dims
	if dims == 0 {
		dims = 1024
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				fieldContent: map[string]any{"type": "text"},
				fieldVector: map[string]any{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
				MetaSource: map[string]any{"type": "keyword"},
			},
		},
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  bytes.NewReader(data),
	}
	res, err = req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	s.log.Info("elasticsearch index created", zap.String("index", s.index), zap.Int("dims", dims))
	return nil
}

func (s *ESStore) refresh(ctx context.Context) error {
	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithIndex(s.index),
		s.client.Indices.Refresh.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	drain(res)
	if res.IsError() {
		return fmt.Errorf("failed to refresh index: %s", res.Status())
	}
	return nil
}

// documentToFields 分块转 ES 字段
// 已有向量直接写入 content_vector，否则交给索引器向量化
func documentToFields(ctx context.Context, doc *schema.Document) (map[string]es8.FieldValue, error) {
	fields := make(map[string]es8.FieldValue, len(doc.MetaData)+2)

	if vec := doc.DenseVector(); len(vec) > 0 {
		fields[fieldContent] = es8.FieldValue{Value: doc.Content}
		fields[fieldVector] = es8.FieldValue{Value: vec}
	} else {
		fields[fieldContent] = es8.FieldValue{Value: doc.Content, EmbedKey: fieldVector}
	}

	for k, v := range doc.MetaData {
		if strings.HasPrefix(k, "_") || k == fieldContent || k == fieldVector {
			continue
		}
		fields[k] = es8.FieldValue{Value: v}
	}
	return fields, nil
}

// parseHit 命中结果转文档
// 余弦检索的脚本分数为 cosine + 1，这里还原为余弦值
func parseHit(ctx context.Context, hit types.Hit) (*schema.Document, error) {
	if hit.Id_ == nil {
		return nil, fmt.Errorf("hit without id")
	}

	src := map[string]any{}
	if len(hit.Source_) > 0 {
		if err := json.Unmarshal(hit.Source_, &src); err != nil {
			return nil, fmt.Errorf("failed to decode hit source: %w", err)
		}
	}

	doc := &schema.Document{ID: *hit.Id_, MetaData: map[string]any{}}
	for k, v := range src {
		switch k {
		case fieldContent:
			doc.Content, _ = v.(string)
		case fieldVector:
		default:
			doc.MetaData[k] = v
		}
	}

	if hit.Score_ != nil {
		doc.WithScore(float64(*hit.Score_) - 1)
	}
	return doc, nil
}

// fixedVector 对任意输入返回同一向量，用于以已知向量检索
type fixedVector []float64

func (f fixedVector) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f
	}
	return out, nil
}

func drain(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
