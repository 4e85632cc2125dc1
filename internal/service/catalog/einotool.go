package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// boundTool 绑定用户的 eino 工具
type boundTool struct {
	catalog *Catalog
	tool    Tool
	userID  string
}

// InvokableTool 以 eino InvokableTool 暴露指定工具，调用时使用 userID
func (c *Catalog) InvokableTool(name, userID string) (tool.InvokableTool, error) {
	t, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return &boundTool{catalog: c, tool: t, userID: userID}, nil
}

func (b *boundTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return toolInfo(b.tool), nil
}

// InvokableRun 参数无法解析时返回失败结果而不是 error
func (b *boundTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	name := b.tool.Name()

	var res *Result
	params, err := DecodeArgs(argumentsInJSON)
	if err != nil {
		res = Failure(name, err)
	} else {
		res = b.catalog.Invoke(ctx, name, b.userID, params)
	}

	out, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(out), nil
}
