// Package chat 单轮对话编排：意图识别、工具执行或检索问答、回复渲染与历史记录
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/metrics"
	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
	"github.com/ashwinyue/shop-assistant/internal/service/intent"
	"github.com/ashwinyue/shop-assistant/internal/service/llm"
	"github.com/ashwinyue/shop-assistant/internal/service/retrieval"
	"github.com/ashwinyue/shop-assistant/internal/service/session"
)

// 回答时带入的历史消息条数
const historyWindow = 6

// ErrEmptyQuery 查询为空
var ErrEmptyQuery = errors.New("query is empty")

// Searcher 检索流水线
type Searcher interface {
	SemanticSearch(ctx context.Context, query string) ([]*schema.Document, error)
	Search(ctx context.Context, query string, k int) ([]*schema.Document, error)
}

// Reply 单轮对话的回复
type Reply struct {
	Reply     string                    `json:"reply"`
	ToolName  string                    `json:"tool_name,omitempty"`
	Products  []*catalog.ProductSummary `json:"products,omitempty"`
	Cart      *catalog.CartView         `json:"cart,omitempty"`
	Order     any                       `json:"order,omitempty"`
	Sources   []string                  `json:"sources"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Config 对话服务依赖
type Config struct {
	Router    *intent.Router
	Catalog   *catalog.Catalog
	Retrieval Searcher
	LLM       *llm.Caller
	Sessions  *session.Manager
	StoreName string
	Log       *zap.Logger
	Now       func() time.Time
}

// Service 对话服务
type Service struct {
	router    *intent.Router
	catalog   *catalog.Catalog
	retrieval Searcher
	llm       *llm.Caller
	sessions  *session.Manager
	persona   string
	log       *zap.Logger
	now       func() time.Time
}

// New 创建对话服务
func New(cfg *Config) (*Service, error) {
	if cfg.Router == nil || cfg.Catalog == nil || cfg.Sessions == nil {
		return nil, fmt.Errorf("chat: router, catalog and sessions are required")
	}
	s := &Service{
		router:    cfg.Router,
		catalog:   cfg.Catalog,
		retrieval: cfg.Retrieval,
		llm:       cfg.LLM,
		sessions:  cfg.Sessions,
		persona:   Persona(cfg.StoreName),
		log:       cfg.Log,
		now:       cfg.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// SubmitMessage 处理一条用户消息
// 不返回错误，任何失败都降级为致歉回复且不写入历史
func (s *Service) SubmitMessage(ctx context.Context, userID, message string) (reply *Reply) {
	route := "failed"
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("chat turn panicked", zap.String("user_id", userID), zap.Any("panic", r))
			reply = s.apology()
			route = "failed"
		}
		metrics.ChatTurns.WithLabelValues(route).Inc()
	}()

	message = strings.TrimSpace(message)
	if message == "" {
		return s.apology()
	}

	decision := s.router.Classify(ctx, message)

	var err error
	if decision.ShouldCallTool {
		reply = s.runTool(ctx, userID, message, decision)
		route = "tool"
	} else {
		reply, err = s.answer(ctx, userID, message)
		route = "retrieval"
	}
	if err != nil {
		s.log.Error("chat turn failed", zap.String("user_id", userID), zap.Error(err))
		route = "failed"
		return s.apology()
	}

	if err := s.sessions.Append(ctx, userID,
		schema.UserMessage(message),
		schema.AssistantMessage(reply.Reply, nil),
	); err != nil {
		s.log.Warn("failed to append history", zap.String("user_id", userID), zap.Error(err))
	}
	return reply
}

// runTool 执行工具并渲染结果
func (s *Service) runTool(ctx context.Context, userID, message string, d *intent.Decision) *Reply {
	params := intent.Resolve(d.ToolName, message, d.Parameters)
	res := s.catalog.Invoke(ctx, d.ToolName, userID, params)

	reply := s.newReply(Render(res))
	reply.ToolName = d.ToolName
	if !res.Success {
		return reply
	}

	switch res.Kind {
	case catalog.KindProductList:
		reply.Products = res.ProductList.Products
	case catalog.KindCart:
		reply.Cart = res.Cart
	case catalog.KindOrderCreated:
		reply.Order = res.OrderCreated
	case catalog.KindOrderStatus:
		reply.Order = res.OrderStatus
	case catalog.KindTracking:
		reply.Order = res.Tracking
	}
	return reply
}

// answer 检索上下文并让模型基于上下文作答
func (s *Service) answer(ctx context.Context, userID, question string) (*Reply, error) {
	if s.retrieval == nil {
		return nil, fmt.Errorf("retrieval pipeline not configured")
	}
	docs, err := s.retrieval.SemanticSearch(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	contextText := retrieval.BuildContext(docs)
	if contextText == "" {
		return s.newReply(notFoundReply), nil
	}

	history, err := s.sessions.History(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load history", zap.String("user_id", userID), zap.Error(err))
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(s.persona))
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(fmt.Sprintf(answerPrompt, contextText, question)))

	text, err := s.llm.Generate(ctx, "answer", msgs)
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = notFoundReply
	}

	reply := s.newReply(text)
	reply.Sources = retrieval.Sources(docs)
	return reply, nil
}

// SearchDocuments 直接检索文档，k <= 0 时使用流水线默认值
func (s *Service) SearchDocuments(ctx context.Context, query string, k int) ([]*schema.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.retrieval == nil {
		return nil, fmt.Errorf("retrieval pipeline not configured")
	}
	if k <= 0 {
		return s.retrieval.SemanticSearch(ctx, query)
	}
	return s.retrieval.Search(ctx, query, k)
}

// GetHistory 用户的对话历史
func (s *Service) GetHistory(ctx context.Context, userID string) ([]*schema.Message, error) {
	return s.sessions.History(ctx, userID)
}

// ClearHistory 清空用户的对话历史
func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	return s.sessions.Clear(ctx, userID)
}

func (s *Service) newReply(text string) *Reply {
	return &Reply{
		Reply:     text,
		Sources:   []string{},
		Timestamp: s.now(),
	}
}

func (s *Service) apology() *Reply {
	return s.newReply(apologyReply)
}
