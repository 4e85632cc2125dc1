package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ========== Mock ChatModel ==========

// ChatModel 可编排回复的 ChatModel
// Reply 根据输入消息返回回复，为空时返回 Content
type ChatModel struct {
	Content string
	Err     error
	Reply   func(msgs []*schema.Message) (string, error)

	mu    sync.Mutex
	calls [][]*schema.Message
}

// Generate 实现 model.BaseChatModel
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Reply != nil {
		content, err := m.Reply(input)
		if err != nil {
			return nil, err
		}
		return schema.AssistantMessage(content, nil), nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.Content, nil), nil
}

// Stream 实现 model.BaseChatModel
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls 返回所有调用的输入
func (m *ChatModel) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*schema.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 调用次数
func (m *ChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastPrompt 最后一次调用中最后一条消息的内容
func (m *ChatModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	last := m.calls[len(m.calls)-1]
	if len(last) == 0 {
		return ""
	}
	return last[len(last)-1].Content
}

// ========== Mock Embedder ==========

// Embedder 词袋哈希向量化，相同词汇的文本向量相近
type Embedder struct {
	Dim int
	Err error

	mu    sync.Mutex
	calls int
}

// EmbedStrings 实现 embedding.Embedder
func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	dim := e.Dim
	if dim <= 0 {
		dim = 64
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = HashVector(text, dim)
	}
	return out, nil
}

// Calls 调用次数
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// HashVector 将文本的词哈希到固定维度并归一化
func HashVector(text string, dim int) []float64 {
	vec := make([]float64, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		w = strings.TrimSuffix(w, "s")
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32())%dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
