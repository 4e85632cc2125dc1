// Package service 组装应用的全部服务
package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/config"
	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/service/auth"
	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
	"github.com/ashwinyue/shop-assistant/internal/service/chat"
	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
	"github.com/ashwinyue/shop-assistant/internal/service/embedding"
	"github.com/ashwinyue/shop-assistant/internal/service/ingest"
	"github.com/ashwinyue/shop-assistant/internal/service/intent"
	"github.com/ashwinyue/shop-assistant/internal/service/llm"
	"github.com/ashwinyue/shop-assistant/internal/service/retrieval"
	"github.com/ashwinyue/shop-assistant/internal/service/seed"
	"github.com/ashwinyue/shop-assistant/internal/service/session"
	"github.com/ashwinyue/shop-assistant/internal/service/storage"
)

// Services 服务集合
type Services struct {
	// 业务服务
	Chat    *chat.Service
	Auth    *auth.Service
	Catalog *catalog.Catalog
	Ingest  *ingest.Ingester
	Seeder  *seed.Seeder

	// 配置
	Config   *config.Config
	Repos    *repository.Repositories
	Sessions *session.Manager

	// 检索组件
	Embedder  *embedding.Provider
	Store     docstore.Store
	LLM       *llm.Caller
	Router    *intent.Router
	Retrieval *retrieval.Pipeline

	// Storage 上传文件存储，初始化失败时为 nil
	Storage storage.Storage

	log *zap.Logger
}

// NewServices 创建所有服务
// 模型或向量服务不可用时降级运行：意图识别回落到检索，检索返回致歉
func NewServices(ctx context.Context, cfg *config.Config, repos *repository.Repositories, redisClient *redis.Client, log *zap.Logger) (*Services, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Embedding
	embedder, err := embedding.New(ctx, cfg.AI.Embedding)
	if err != nil {
		log.Warn("embedding provider unavailable", zap.Error(err))
	}

	// 文档存储
	store, err := newDocStore(ctx, cfg, embedder, log)
	if err != nil {
		return nil, err
	}

	// ChatModel
	caller := newLLMCaller(ctx, cfg, log)

	// 工具目录
	tools, err := catalog.NewDefault(catalog.Deps{
		Products:  repos.Product,
		Cart:      repos.Cart,
		Orders:    repos.Order,
		Warehouse: cfg.Chat.WarehouseLocation,
	}, log.Named("catalog"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tool catalog: %w", err)
	}

	router, err := intent.NewRouter(caller, tools.Describe(), cfg.Chat.StoreName, log.Named("intent"))
	if err != nil {
		return nil, fmt.Errorf("failed to create intent router: %w", err)
	}

	pipeline, err := retrieval.New(ctx, &retrieval.Config{
		LLM:          caller,
		Retriever:    docstore.NewRetriever(embedder, store, cfg.Retrieval.TopK),
		TopK:         cfg.Retrieval.TopK,
		PreviewChars: cfg.Retrieval.PreviewChars,
		Log:          log.Named("retrieval"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieval pipeline: %w", err)
	}

	// 会话
	sessions := session.NewManager(redisClient, session.Config{
		TTL:         cfg.Chat.HistoryTTLDuration(),
		MaxMessages: cfg.Chat.MaxHistory,
	}, log.Named("session"))
	sessions.Start()

	chatSvc, err := chat.New(&chat.Config{
		Router:    router,
		Catalog:   tools,
		Retrieval: pipeline,
		LLM:       caller,
		Sessions:  sessions,
		StoreName: cfg.Chat.StoreName,
		Log:       log.Named("chat"),
	})
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	authSvc, err := auth.New(repos.Auth, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDuration())
	if err != nil {
		sessions.Close()
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwtSecret not set, using a random secret; tokens will not survive restarts")
	}

	ingester, err := ingest.New(ctx, &ingest.Config{
		Store:        store,
		Embedder:     embedder,
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
		Log:          log.Named("ingest"),
	})
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to create ingester: %w", err)
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Warn("file storage unavailable, uploads disabled", zap.Error(err))
		files = nil
	}

	log.Info("services initialized",
		zap.Strings("tools", tools.Names()),
		zap.String("retrieval_backend", cfg.Retrieval.Backend),
		zap.Bool("llm_available", caller.Available()),
		zap.Bool("embedding_available", embedder.Available()),
		zap.Bool("redis", redisClient != nil))

	return &Services{
		Chat:    chatSvc,
		Auth:    authSvc,
		Catalog: tools,
		Ingest:  ingester,
		Seeder:  seed.New(repos.Product, ingester, log.Named("seed")),

		Config:   cfg,
		Repos:    repos,
		Sessions: sessions,

		Embedder:  embedder,
		Store:     store,
		LLM:       caller,
		Router:    router,
		Retrieval: pipeline,

		Storage: files,
		log:     log,
	}, nil
}

// Close 停止后台任务
func (s *Services) Close() {
	s.Sessions.Close()
}
