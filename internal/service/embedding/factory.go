package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/dashscope"
	"github.com/cloudwego/eino-ext/components/embedding/ollama"
	openaiemb "github.com/cloudwego/eino-ext/components/embedding/openai"
	einoembedding "github.com/cloudwego/eino/components/embedding"

	"github.com/ashwinyue/shop-assistant/internal/config"
)

// NewEmbedder 按配置创建底层 Embedder
// 支持 dashscope（默认）、openai 兼容接口和 ollama
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (einoembedding.Embedder, error) {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	switch strings.ToLower(cfg.Provider) {
	case "dashscope", "alibaba", "qwen", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding api_key is required for provider: dashscope")
		}
		model := cfg.Model
		if model == "" {
			model = "text-embedding-v3"
		}
		embConfig := &dashscope.EmbeddingConfig{
			APIKey:  cfg.APIKey,
			Model:   model,
			Timeout: timeout,
		}
		if cfg.Dimensions > 0 {
			dims := cfg.Dimensions
			embConfig.Dimensions = &dims
		}
		return dashscope.NewEmbedder(ctx, embConfig)

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding api_key is required for provider: openai")
		}
		embConfig := &openaiemb.EmbeddingConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}
		if cfg.Dimensions > 0 {
			dims := cfg.Dimensions
			embConfig.Dimensions = &dims
		}
		return openaiemb.NewEmbedder(ctx, embConfig)

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
			BaseURL: baseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// New 创建 Provider
// 底层模型创建失败时返回不可用的 Provider 和错误，调用方可降级运行
func New(ctx context.Context, cfg config.EmbeddingConfig) (*Provider, error) {
	embedder, err := NewEmbedder(ctx, cfg)
	if err != nil {
		return NewProvider(nil, cfg.MaxRunes), fmt.Errorf("failed to create embedder: %w", err)
	}
	return NewProvider(embedder, cfg.MaxRunes), nil
}
