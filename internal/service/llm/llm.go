// Package llm 封装对话模型的创建与带超时的单次调用
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/config"
	"github.com/ashwinyue/shop-assistant/internal/metrics"
)

// ErrNoModel 未配置对话模型
var ErrNoModel = errors.New("chat model not configured")

const dashscopeCompatibleURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// NewChatModel 按配置创建 ChatModel
// 所有提供商均走 OpenAI 兼容接口
func NewChatModel(ctx context.Context, aiCfg config.AIConfig) (model.BaseChatModel, error) {
	var apiKey, baseURL, modelName string

	switch aiCfg.Provider {
	case "openai":
		apiKey = aiCfg.OpenAI.APIKey
		baseURL = aiCfg.OpenAI.BaseURL
		modelName = aiCfg.OpenAI.Model
	case "alibaba", "qwen", "dashscope":
		apiKey = aiCfg.Alibaba.AccessKeySecret
		baseURL = dashscopeCompatibleURL
		modelName = aiCfg.Alibaba.Model
	case "deepseek":
		apiKey = aiCfg.DeepSeek.APIKey
		baseURL = aiCfg.DeepSeek.BaseURL
		modelName = aiCfg.DeepSeek.Model
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required for provider: %s", aiCfg.Provider)
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	// 分类与重排需要稳定输出
	temperature := float32(0.2)

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Temperature: &temperature,
	})
}

// Caller 对每次调用单独施加超时并记录耗时
type Caller struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewCaller 创建调用器，timeout <= 0 时不额外限制
func NewCaller(m model.BaseChatModel, timeout time.Duration) *Caller {
	return &Caller{model: m, timeout: timeout}
}

// Generate 调用模型并返回去除首尾空白的文本
func (c *Caller) Generate(ctx context.Context, stage string, msgs []*schema.Message) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrNoModel
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.model.Generate(ctx, msgs)
	metrics.ObserveLLM(stage, start, err)
	if err != nil {
		return "", fmt.Errorf("%s: %w", stage, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%s: empty response", stage)
	}
	return strings.TrimSpace(resp.Content), nil
}

// Available 是否配置了模型
func (c *Caller) Available() bool {
	return c != nil && c.model != nil
}
