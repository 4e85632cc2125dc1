// Package ingest 离线文档入库：解析 → 分块 → 向量化 → 写入文档存储
// 同一来源重复入库时先删除旧分块
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
)

const (
	defaultChunkSize    = 300
	defaultChunkOverlap = 50

	metaFileName   = "file_name"
	metaChunkIndex = "chunk_index"
)

var (
	// ErrUnsupportedType 不支持的文件类型
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptyDocument 解析后没有文本
	ErrEmptyDocument = errors.New("document has no text content")
)

// Embedder 批量向量化
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Config 入库配置
type Config struct {
	Store        docstore.Store
	Embedder     Embedder
	ChunkSize    int
	ChunkOverlap int
	Log          *zap.Logger
}

// Result 单个来源的入库结果
type Result struct {
	Source   string   `json:"source"`
	Chunks   int      `json:"chunks"`
	Replaced int      `json:"replaced"`
	IDs      []string `json:"ids"`
}

// Ingester 文档入库服务
type Ingester struct {
	store    docstore.Store
	embedder Embedder
	splitter document.Transformer
	log      *zap.Logger
}

// New 创建入库服务
func New(ctx context.Context, cfg *Config) (*Ingester, error) {
	if cfg.Store == nil || cfg.Embedder == nil {
		return nil, fmt.Errorf("ingest: store and embedder are required")
	}
	size := cfg.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   size,
		OverlapSize: overlap,
		Separators:  []string{"\n\n", "\n", " ", ""},
		LenFunc:     utf8.RuneCountInString,
		KeepType:    recursive.KeepTypeNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{store: cfg.Store, embedder: cfg.Embedder, splitter: splitter, log: log}, nil
}

// IngestText 入库一段纯文本
func (i *Ingester) IngestText(ctx context.Context, source, text string, meta map[string]any) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}
	md := make(map[string]any, len(meta))
	for k, v := range meta {
		md[k] = v
	}
	return i.ingest(ctx, source, []*schema.Document{{Content: text, MetaData: md}})
}

// IngestReader 按文件名选择解析器并入库
func (i *Ingester) IngestReader(ctx context.Context, source, fileName string, r io.Reader) (*Result, error) {
	p, err := newParser(ctx, fileName)
	if err != nil {
		return nil, err
	}
	docs, err := p.Parse(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	for _, d := range docs {
		if d.MetaData == nil {
			d.MetaData = map[string]any{}
		}
		d.MetaData[metaFileName] = filepath.Base(fileName)
	}
	return i.ingest(ctx, source, docs)
}

// IngestFile 入库本地文件，来源为文件名
func (i *Ingester) IngestFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return i.IngestReader(ctx, filepath.Base(path), path, f)
}

// IngestPath 入库文件或目录，目录下不支持的文件跳过
func (i *Ingester) IngestPath(ctx context.Context, root string) ([]*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		res, err := i.IngestFile(ctx, root)
		if err != nil {
			return nil, err
		}
		return []*Result{res}, nil
	}

	var results []*Result
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		res, err := i.IngestFile(ctx, path)
		if errors.Is(err, ErrEmptyDocument) {
			i.log.Warn("skip empty document", zap.String("path", path))
			return nil
		}
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	})
	return results, err
}

// DeleteSource 删除某个来源的全部分块
func (i *Ingester) DeleteSource(ctx context.Context, source string) (int, error) {
	deleter, ok := i.store.(docstore.SourceDeleter)
	if !ok {
		return 0, fmt.Errorf("document store does not support delete by source")
	}
	return deleter.DeleteBySource(ctx, source)
}

// DeleteChunks 按 ID 删除分块
func (i *Ingester) DeleteChunks(ctx context.Context, ids []string) error {
	return i.store.Delete(ctx, ids)
}

func (i *Ingester) ingest(ctx context.Context, source string, docs []*schema.Document) (*Result, error) {
	if source == "" {
		return nil, fmt.Errorf("ingest: source is required")
	}

	chunks, err := i.splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("splitter failed: %w", err)
	}

	texts := make([]string, 0, len(chunks))
	kept := make([]*schema.Document, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		kept = append(kept, c)
		texts = append(texts, c.Content)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyDocument
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	for idx, c := range kept {
		md := make(map[string]any, len(c.MetaData)+2)
		for k, v := range c.MetaData {
			md[k] = v
		}
		md[docstore.MetaSource] = source
		md[metaChunkIndex] = idx
		c.ID = docstore.NewID()
		c.MetaData = md
		c.WithDenseVector(vectors[idx])
	}

	res := &Result{Source: source, Chunks: len(kept)}
	if deleter, ok := i.store.(docstore.SourceDeleter); ok {
		if res.Replaced, err = deleter.DeleteBySource(ctx, source); err != nil {
			return nil, fmt.Errorf("failed to replace chunks of %s: %w", source, err)
		}
	}

	if res.IDs, err = i.store.Add(ctx, kept); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	i.log.Info("document ingested",
		zap.String("source", source),
		zap.Int("chunks", res.Chunks),
		zap.Int("replaced", res.Replaced))
	return res, nil
}
