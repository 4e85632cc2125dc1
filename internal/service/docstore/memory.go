package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/schema"
)

type memoryEntry struct {
	doc    *schema.Document
	vector []float64
	seq    uint64
}

// MemoryStore 内存向量存储，精确计算余弦相似度
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	nextSeq uint64
	dim     int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

// Add 写入分块，ID 为空时自动生成
func (s *MemoryStore) Add(ctx context.Context, docs []*schema.Document) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 先整体校验，避免部分写入
	for _, doc := range docs {
		if err := s.checkVector(doc.DenseVector()); err != nil {
			return nil, err
		}
		if doc.ID != "" {
			if _, exists := s.entries[doc.ID]; exists {
				return nil, fmt.Errorf("chunk %s already exists", doc.ID)
			}
		}
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = NewID()
		}
		s.put(id, doc, 0)
		ids[i] = id
	}
	return ids, nil
}

// Update 替换已有分块的内容和向量，保留原写入顺序
func (s *MemoryStore) Update(ctx context.Context, ids []string, docs []*schema.Document) error {
	if len(ids) != len(docs) {
		return fmt.Errorf("ids and docs length mismatch: %d != %d", len(ids), len(docs))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range ids {
		if _, ok := s.entries[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := s.checkVector(docs[i].DenseVector()); err != nil {
			return err
		}
	}
	for i, id := range ids {
		s.put(id, docs[i], s.entries[id].seq)
	}
	return nil
}

// Delete 删除分块，不存在的 ID 忽略
func (s *MemoryStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	if len(s.entries) == 0 {
		s.dim = 0
	}
	return nil
}

// DeleteBySource 删除某来源的全部分块
func (s *MemoryStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if SourceOf(e.doc) == source {
			delete(s.entries, id)
			n++
		}
	}
	if len(s.entries) == 0 {
		s.dim = 0
	}
	return n, nil
}

// Search 返回相似度最高的 k 个分块
func (s *MemoryStore) Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error) {
	if k <= 0 {
		return []*schema.Document{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim != 0 && len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(vector), s.dim)
	}

	type scored struct {
		e     *memoryEntry
		score float64
	}
	all := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, scored{e: e, score: Cosine(vector, e.vector)})
	}
	// 先按写入顺序排列，再稳定排序分数，分数相同保持写入顺序
	sort.Slice(all, func(i, j int) bool { return all[i].e.seq < all[j].e.seq })
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	if len(all) > k {
		all = all[:k]
	}
	out := make([]*schema.Document, len(all))
	for i, sc := range all {
		out[i] = cloneDoc(sc.e.doc).WithScore(sc.score)
	}
	return out, nil
}

// Len 分块数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) put(id string, doc *schema.Document, seq uint64) {
	stored := cloneDoc(doc)
	stored.ID = id
	vec := append([]float64(nil), doc.DenseVector()...)
	if seq == 0 {
		s.nextSeq++
		seq = s.nextSeq
	}
	s.entries[id] = &memoryEntry{doc: stored, vector: vec, seq: seq}
	s.dim = len(vec)
}

func (s *MemoryStore) checkVector(vec []float64) error {
	if len(vec) == 0 {
		return ErrMissingVector
	}
	if s.dim != 0 && len(vec) != s.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), s.dim)
	}
	return nil
}
