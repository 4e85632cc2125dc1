// Package retrieval 检索流水线：查询改写 → 向量检索 → LLM 重排
// 基于 eino compose.Graph 编排，每个阶段失败时降级到下一阶段
package retrieval

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/service/llm"
)

const (
	defaultTopK         = 4
	defaultPreviewChars = 400
)

// ========== 检索状态 ==========

// Request 检索请求，TopK <= 0 时使用配置值
type Request struct {
	Query string
	TopK  int
}

// State 检索流程状态
type State struct {
	Query        string
	TopK         int
	Reformulated string

	Retrieved []*schema.Document
	Ranked    []*schema.Document

	// 降级原因，仅用于日志
	ReformulateErr error
	RerankErr      error
}

// ========== 配置 ==========

// Config 流水线配置
type Config struct {
	LLM          *llm.Caller
	Retriever    retriever.Retriever
	TopK         int
	PreviewChars int
	Log          *zap.Logger
}

// Pipeline 检索流水线
type Pipeline struct {
	graph     compose.Runnable[*Request, *State]
	retriever retriever.Retriever
	reformer  *Reformulator
	reranker  *Reranker
	topK      int
	log       *zap.Logger
}

// New 创建检索流水线
func New(ctx context.Context, cfg *Config) (*Pipeline, error) {
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	preview := cfg.PreviewChars
	if preview <= 0 {
		preview = defaultPreviewChars
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pipeline{
		retriever: cfg.Retriever,
		reformer:  NewReformulator(cfg.LLM),
		reranker:  NewReranker(cfg.LLM, preview),
		topK:      topK,
		log:       log,
	}

	graph, err := p.buildGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	p.graph = graph
	return p, nil
}

// buildGraph 构建 reformulate → retrieve → rerank
func (p *Pipeline) buildGraph(ctx context.Context) (compose.Runnable[*Request, *State], error) {
	g := compose.NewGraph[*Request, *State]()

	reformulateNode := compose.InvokableLambda(func(ctx context.Context, req *Request) (*State, error) {
		state := &State{Query: req.Query, TopK: req.TopK}
		if state.TopK <= 0 {
			state.TopK = p.topK
		}
		state.Reformulated, state.ReformulateErr = p.reformer.Reformulate(ctx, req.Query)
		return state, nil
	})

	retrieveNode := compose.InvokableLambda(func(ctx context.Context, state *State) (*State, error) {
		docs, err := p.retriever.Retrieve(ctx, state.Reformulated, retriever.WithTopK(state.TopK))
		if err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}
		state.Retrieved = docs
		return state, nil
	})

	rerankNode := compose.InvokableLambda(func(ctx context.Context, state *State) (*State, error) {
		state.Ranked, state.RerankErr = p.reranker.Rerank(ctx, state.Query, state.Retrieved)
		return state, nil
	})

	if err := g.AddLambdaNode("reformulate", reformulateNode); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode("retrieve", retrieveNode); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode("rerank", rerankNode); err != nil {
		return nil, err
	}

	if err := g.AddEdge(compose.START, "reformulate"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("reformulate", "retrieve"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("retrieve", "rerank"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("rerank", compose.END); err != nil {
		return nil, err
	}

	return g.Compile(ctx, compose.WithGraphName("retrieval"))
}

// ========== 公开方法 ==========

// Run 执行检索并返回完整状态
func (p *Pipeline) Run(ctx context.Context, req *Request) (*State, error) {
	state, err := p.graph.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if state.ReformulateErr != nil {
		p.log.Warn("query reformulation skipped", zap.Error(state.ReformulateErr))
	}
	if state.RerankErr != nil {
		p.log.Warn("rerank skipped", zap.Error(state.RerankErr))
	}
	return state, nil
}

// SemanticSearch 使用默认 TopK 检索并重排
func (p *Pipeline) SemanticSearch(ctx context.Context, query string) ([]*schema.Document, error) {
	return p.Search(ctx, query, 0)
}

// Search 指定 TopK 检索并重排
func (p *Pipeline) Search(ctx context.Context, query string, k int) ([]*schema.Document, error) {
	state, err := p.Run(ctx, &Request{Query: query, TopK: k})
	if err != nil {
		return nil, err
	}
	return state.Ranked, nil
}
