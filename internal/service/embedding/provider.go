// Package embedding 文本向量化
// Provider 在 eino Embedder 之上统一错误语义和输入长度限制
package embedding

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	einoembedding "github.com/cloudwego/eino/components/embedding"
)

var (
	// ErrTextTooLong 输入超过配置的长度上限
	ErrTextTooLong = errors.New("text exceeds embedding input limit")
	// ErrUnavailable 向量模型不可用或调用失败
	ErrUnavailable = errors.New("embedding model unavailable")
)

// Provider 向量化服务
// 同时实现 einoembedding.Embedder，可直接交给 es8 索引器和检索器使用
type Provider struct {
	embedder einoembedding.Embedder
	maxRunes int
}

// NewProvider 创建向量化服务，maxRunes <= 0 表示不限制
func NewProvider(embedder einoembedding.Embedder, maxRunes int) *Provider {
	return &Provider{embedder: embedder, maxRunes: maxRunes}
}

// Embed 单条文本向量化
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch 批量向量化，结果与输入一一对应
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return p.EmbedStrings(ctx, texts)
}

// EmbedStrings 实现 einoembedding.Embedder
func (p *Provider) EmbedStrings(ctx context.Context, texts []string, opts ...einoembedding.Option) ([][]float64, error) {
	if p == nil || p.embedder == nil {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if p.maxRunes > 0 {
		for i, t := range texts {
			if n := utf8.RuneCountInString(t); n > p.maxRunes {
				return nil, fmt.Errorf("%w: input %d has %d runes, limit %d", ErrTextTooLong, i, n, p.maxRunes)
			}
		}
	}

	vectors, err := p.embedder.EmbedStrings(ctx, texts, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrUnavailable, len(vectors), len(texts))
	}
	return vectors, nil
}

// Available 是否配置了向量模型
func (p *Provider) Available() bool {
	return p != nil && p.embedder != nil
}
