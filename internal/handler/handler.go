// Package handler HTTP 处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/middleware"
	"github.com/ashwinyue/shop-assistant/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Chat     *ChatHandler
	Auth     *AuthHandler
	Shop     *ShopHandler
	Tool     *ToolHandler
	Document *DocumentHandler
	System   *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Chat:     NewChatHandler(svc.Chat),
		Auth:     NewAuthHandler(svc.Auth),
		Shop:     NewShopHandler(svc.Catalog, svc.Repos.Order),
		Tool:     NewToolHandler(svc.Catalog),
		Document: NewDocumentHandler(svc.Ingest, svc.Storage),
		System:   NewSystemHandler(svc),
	}
}

// getUserID 获取用户ID，由认证中间件写入
func getUserID(c *gin.Context) string {
	id, _ := middleware.GetUserID(c)
	return id
}
