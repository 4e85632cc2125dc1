package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
)

// 工具参数请求体上限
const maxToolArgsBytes = 64 << 10

// ToolHandler 工具处理器
type ToolHandler struct {
	catalog *catalog.Catalog
}

// NewToolHandler 创建工具处理器
func NewToolHandler(c *catalog.Catalog) *ToolHandler {
	return &ToolHandler{catalog: c}
}

// ToolView 工具描述
type ToolView struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Parameters  map[string]*schema.ParameterInfo `json:"parameters"`
}

// ListTools 列出工具及参数
// GET /api/v1/tools
func (h *ToolHandler) ListTools(c *gin.Context) {
	names := h.catalog.Names()
	views := make([]*ToolView, 0, len(names))
	for _, name := range names {
		t, _ := h.catalog.Get(name)
		views = append(views, &ToolView{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Params(),
		})
	}
	Success(c, gin.H{
		"tools": views,
		"total": len(views),
	})
}

// InvokeTool 以 JSON 参数调用工具，参数格式有误时先修复
// 请求体即工具参数，响应为工具结果原文
// POST /api/v1/tools/:name/invoke
func (h *ToolHandler) InvokeTool(c *gin.Context) {
	t, err := h.catalog.InvokableTool(c.Param("name"), getUserID(c))
	if err != nil {
		if errors.Is(err, catalog.ErrToolNotFound) {
			NotFound(c, err.Error())
			return
		}
		Error(c, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxToolArgsBytes))
	if err != nil {
		BadRequest(c, "failed to read request body")
		return
	}

	out, err := t.InvokableRun(c.Request.Context(), string(body))
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}
