package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// HealthStatus 健康检查结果
type HealthStatus struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Database  string          `json:"database"`
	Features  map[string]bool `json:"features"`
	Sessions  int             `json:"active_sessions"`
	Timestamp time.Time       `json:"timestamp"`
}

// Health 健康检查
// 数据库不可用时返回 503，模型不可用只影响功能开关
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := &HealthStatus{
		Status:   "ok",
		Database: "ok",
		Features: map[string]bool{
			"llm":          h.svc.LLM.Available(),
			"embedding":    h.svc.Embedder.Available(),
			"file_storage": h.svc.Storage != nil,
		},
		Sessions:  h.svc.Sessions.Len(),
		Timestamp: time.Now(),
	}
	if h.svc.Config != nil {
		status.Version = h.svc.Config.App.Version
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := pingDB(ctx, h.svc); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, Response{Code: http.StatusServiceUnavailable, Msg: "database unavailable", Data: status})
		return
	}

	Success(c, status)
}

func pingDB(ctx context.Context, svc *service.Services) error {
	sqlDB, err := svc.Repos.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
