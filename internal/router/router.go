// Package router HTTP 路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/handler"
	"github.com/ashwinyue/shop-assistant/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, auth middleware.TokenValidator, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.CORSMiddleware())

	// 健康检查与指标
	r.GET("/health", h.System.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(auth))
	{
		v1.GET("/health", h.System.Health)

		// Chat 对话
		v1.POST("/chat", h.Chat.SendMessage)
		v1.GET("/chat/history", h.Chat.GetHistory)
		v1.DELETE("/chat/history", h.Chat.ClearHistory)
		v1.POST("/search", h.Chat.Search)

		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.GET("/me", middleware.RequireAuth(auth), h.Auth.Me)
			authGroup.POST("/logout", middleware.RequireAuth(auth), h.Auth.Logout)
		}

		// Products 商品
		v1.GET("/products", h.Shop.SearchProducts)
		v1.GET("/products/:sku", h.Shop.GetProduct)
		v1.GET("/categories", h.Shop.ListCategories)

		// Cart 购物车
		cart := v1.Group("/cart")
		{
			cart.GET("", h.Shop.ViewCart)
			cart.POST("", h.Shop.AddToCart)
			cart.DELETE("", h.Shop.ClearCart)
			cart.DELETE("/:sku", h.Shop.RemoveFromCart)
		}

		// Orders 订单
		orders := v1.Group("/orders")
		{
			orders.GET("", h.Shop.ListOrders)
			orders.POST("", h.Shop.CreateOrder)
			orders.GET("/:order_number", h.Shop.GetOrder)
			orders.GET("/:order_number/track", h.Shop.TrackOrder)
			orders.POST("/:order_number/retry-payment", h.Shop.RetryPayment)
		}

		// Tools 工具
		tools := v1.Group("/tools")
		{
			tools.GET("", h.Tool.ListTools)
			tools.POST("/:name/invoke", h.Tool.InvokeTool)
		}

		// Documents 知识库文档
		docs := v1.Group("/documents")
		{
			docs.POST("", h.Document.IngestText)
			docs.POST("/upload", h.Document.Upload)
			docs.GET("/files/*key", h.Document.GetFile)
			docs.DELETE("", h.Document.DeleteSource)
			docs.DELETE("/:id", h.Document.DeleteChunk)
		}
	}

	return r
}
