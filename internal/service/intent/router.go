// Package intent 基于 LLM 的意图识别：调用工具还是走检索问答
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/service/llm"
)

// decisionSchema 模型输出的严格约束，不允许多余字段
const decisionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["should_call_tool", "parameters"],
  "properties": {
    "should_call_tool": {"type": "boolean"},
    "tool_name": {"type": ["string", "null"]},
    "parameters": {"type": "object"},
    "rationale": {"type": "string"}
  }
}`

const classifyPrompt = `You are an expert shopping assistant for %s e-commerce store.

Available Tools:
%s
User Message: %s

IMPORTANT: You must respond with ONLY a JSON object (no markdown, no extra text).

Analyze the user message and decide:
1. Should a tool be called?
2. If yes, which tool?
3. What are the extracted parameters?

Return JSON in this exact format:
{"should_call_tool": true, "tool_name": "tool_name_or_null", "parameters": {}, "rationale": "brief explanation"}

Examples:
- "show me candles" -> {"should_call_tool": true, "tool_name": "search_products", "parameters": {"query": "candles"}, "rationale": "User wants to search products"}
- "cotton kurtis under 2000" -> {"should_call_tool": true, "tool_name": "search_products", "parameters": {"query": "cotton kurtis", "max_price": 2000}, "rationale": "Product search with price limit"}
- "add blue kurti to my cart" -> {"should_call_tool": true, "tool_name": "add_to_cart", "parameters": {"product_name": "blue kurti"}, "rationale": "User wants to add product to cart"}
- "what's in my cart" -> {"should_call_tool": true, "tool_name": "view_cart", "parameters": {}, "rationale": "User wants to view cart contents"}
- "cart mein kya hai?" -> {"should_call_tool": true, "tool_name": "view_cart", "parameters": {}, "rationale": "Hinglish request to view cart"}
- "mujhe soaps dikhao" -> {"should_call_tool": true, "tool_name": "search_products", "parameters": {"query": "soaps"}, "rationale": "Hinglish product search"}
- "place my order with UPI" -> {"should_call_tool": true, "tool_name": "create_order", "parameters": {"payment_method": "UPI"}, "rationale": "User wants to checkout"}
- "where is my order ORD12345" -> {"should_call_tool": true, "tool_name": "track_order", "parameters": {"order_id": "ORD12345"}, "rationale": "User wants to track order"}
- "what is your return policy?" -> {"should_call_tool": false, "tool_name": null, "parameters": {}, "rationale": "Policy question, answer from knowledge base"}
- "hello, how are you?" -> {"should_call_tool": false, "tool_name": null, "parameters": {}, "rationale": "Casual greeting, no tool needed"}

Now analyze this message and respond with ONLY the JSON object.`

// Decision 意图识别结果
type Decision struct {
	ShouldCallTool bool           `json:"should_call_tool"`
	ToolName       string         `json:"tool_name,omitempty"`
	Parameters     map[string]any `json:"parameters"`
	Rationale      string         `json:"rationale"`
}

// rawDecision 模型输出的解码目标，tool_name 允许为 null
type rawDecision struct {
	ShouldCallTool bool           `json:"should_call_tool"`
	ToolName       *string        `json:"tool_name"`
	Parameters     map[string]any `json:"parameters"`
	Rationale      string         `json:"rationale"`
}

// Router 意图路由
type Router struct {
	llm       *llm.Caller
	schema    *gojsonschema.Schema
	storeName string
	toolList  string
	log       *zap.Logger
}

// NewRouter 创建意图路由，tools 用于生成提示词中的工具列表
func NewRouter(caller *llm.Caller, tools []*schema.ToolInfo, storeName string, log *zap.Logger) (*Router, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(decisionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load decision schema: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if storeName == "" {
		storeName = "AJ Creations"
	}

	var b strings.Builder
	for i, t := range tools {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, t.Name, t.Desc)
	}

	return &Router{
		llm:       caller,
		schema:    s,
		storeName: storeName,
		toolList:  b.String(),
		log:       log,
	}, nil
}

// Prompt 分类提示词
func (r *Router) Prompt(message string) string {
	return fmt.Sprintf(classifyPrompt, r.storeName, r.toolList, message)
}

// Classify 识别意图，任何失败都降级为不调用工具并把原因写入 Rationale
// 模型给出的工具名原样信任，是否存在由调用方判断
func (r *Router) Classify(ctx context.Context, message string) *Decision {
	out, err := r.llm.Generate(ctx, "classify", []*schema.Message{
		schema.UserMessage(r.Prompt(message)),
	})
	if err != nil {
		return r.failSafe("intent detection error", err)
	}

	d, err := r.Parse(out)
	if err != nil {
		r.log.Debug("raw intent response", zap.String("response", out))
		return r.failSafe("failed to parse intent", err)
	}
	r.log.Info("intent classified",
		zap.Bool("should_call_tool", d.ShouldCallTool),
		zap.String("tool", d.ToolName),
		zap.String("rationale", d.Rationale))
	return d
}

// Parse 严格解析模型输出，只容忍外层的 markdown 代码块
func (r *Router) Parse(text string) (*Decision, error) {
	text = stripFence(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	result, err := r.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("malformed json: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	var raw rawDecision
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after decision object")
	}

	d := &Decision{
		ShouldCallTool: raw.ShouldCallTool,
		Parameters:     raw.Parameters,
		Rationale:      raw.Rationale,
	}
	if d.Parameters == nil {
		d.Parameters = map[string]any{}
	}
	if raw.ToolName != nil {
		d.ToolName = strings.TrimSpace(*raw.ToolName)
	}
	if d.ShouldCallTool && d.ToolName == "" {
		return nil, fmt.Errorf("should_call_tool is true but tool_name is empty")
	}
	if !d.ShouldCallTool {
		d.ToolName = ""
	}
	return d, nil
}

func (r *Router) failSafe(reason string, err error) *Decision {
	r.log.Warn("intent fallback to retrieval", zap.String("reason", reason), zap.Error(err))
	return &Decision{
		Parameters: map[string]any{},
		Rationale:  fmt.Sprintf("%s: %v", reason, err),
	}
}

// stripFence 去掉 ```json ... ``` 包裹
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
