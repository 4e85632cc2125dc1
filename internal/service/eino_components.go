package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/config"
	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
	"github.com/ashwinyue/shop-assistant/internal/service/embedding"
	"github.com/ashwinyue/shop-assistant/internal/service/llm"
)

// newLLMCaller 创建 ChatModel 调用器，模型创建失败时返回不可用的调用器
func newLLMCaller(ctx context.Context, cfg *config.Config, log *zap.Logger) *llm.Caller {
	chatModel, err := llm.NewChatModel(ctx, cfg.AI)
	if err != nil {
		log.Warn("chat model unavailable, intent routing and answers disabled", zap.Error(err))
		return llm.NewCaller(nil, cfg.Chat.LLMTimeoutDuration())
	}
	return llm.NewCaller(chatModel, cfg.Chat.LLMTimeoutDuration())
}

// newDocStore 按 retrieval.backend 创建文档存储
func newDocStore(ctx context.Context, cfg *config.Config, embedder *embedding.Provider, log *zap.Logger) (docstore.Store, error) {
	switch cfg.Retrieval.Backend {
	case "", "memory":
		return docstore.NewMemoryStore(), nil
	case "elasticsearch", "es":
		client, err := docstore.NewESClient(cfg.Elastic.Host, cfg.Elastic.Username, cfg.Elastic.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to create ES client: %w", err)
		}
		store, err := docstore.NewESStore(ctx, client, docstore.ESConfig{
			Index:      cfg.Elastic.IndexPrefix + "_chunks",
			Dimensions: cfg.AI.Embedding.Dimensions,
		}, embedder, log.Named("docstore"))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndex(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure ES index: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported retrieval backend: %s", cfg.Retrieval.Backend)
	}
}
