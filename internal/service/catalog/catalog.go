// Package catalog 购物助手可调用的工具集合
package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/metrics"
)

// ErrToolNotFound 工具未注册
var ErrToolNotFound = errors.New("tool not found")

// Tool 单个工具
// Run 返回的 error 表示内部错误，业务失败通过 Result.Success=false 表达
type Tool interface {
	Name() string
	Description() string
	Params() map[string]*schema.ParameterInfo
	Run(ctx context.Context, userID string, params Params) (*Result, error)
}

// Catalog 按名称索引的工具集合，构造后只读
type Catalog struct {
	tools []Tool
	index map[string]Tool
	log   *zap.Logger
}

// New 创建工具集合，名称重复时报错
func New(log *zap.Logger, tools ...Tool) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{index: make(map[string]Tool, len(tools)), log: log}
	for _, t := range tools {
		if _, ok := c.index[t.Name()]; ok {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name())
		}
		c.index[t.Name()] = t
		c.tools = append(c.tools, t)
	}
	return c, nil
}

// Names 按注册顺序返回工具名
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name()
	}
	return names
}

// Get 按名称获取工具
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.index[name]
	return t, ok
}

// Describe 工具描述，供意图路由和 REST 展示
func (c *Catalog) Describe() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, len(c.tools))
	for i, t := range c.tools {
		infos[i] = toolInfo(t)
	}
	return infos
}

// Invoke 执行工具，不会返回 nil，也不会向上抛出错误或 panic
func (c *Catalog) Invoke(ctx context.Context, name, userID string, params Params) (res *Result) {
	t, ok := c.index[name]
	if !ok {
		c.log.Warn("tool not found", zap.String("tool", name))
		metrics.ObserveTool("unknown", false)
		return Failure(name, fmt.Errorf("%w: %s", ErrToolNotFound, name))
	}
	if params == nil {
		params = Params{}
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("tool panicked",
				zap.String("tool", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			res = Failure(name, fmt.Errorf("internal error: %v", r))
		}
		metrics.ObserveTool(name, res.Success)
	}()

	res, err := t.Run(ctx, userID, params)
	if err != nil {
		c.log.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return Failure(name, err)
	}
	if res == nil {
		return Failure(name, errors.New("empty result"))
	}
	res.Tool = name
	return res
}

func toolInfo(t Tool) *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        t.Name(),
		Desc:        t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(t.Params()),
	}
}
