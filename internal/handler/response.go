package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/service/auth"
	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
	"github.com/ashwinyue/shop-assistant/internal/service/chat"
	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
	"github.com/ashwinyue/shop-assistant/internal/service/embedding"
	"github.com/ashwinyue/shop-assistant/internal/service/ingest"
	"github.com/ashwinyue/shop-assistant/internal/service/storage"
)

// ========== 统一响应格式 ==========

// Response 统一响应
// 成功时 code 为 0，失败时为 HTTP 状态码
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "success", Data: data})
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Msg: "created", Data: data})
}

// Fail 指定状态码的错误响应
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Code: status, Msg: msg})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	Fail(c, http.StatusUnauthorized, msg)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, msg string) {
	Fail(c, http.StatusNotFound, msg)
}

// ServiceUnavailable 503 错误响应
func ServiceUnavailable(c *gin.Context, msg string) {
	Fail(c, http.StatusServiceUnavailable, msg)
}

// Error 根据错误类型返回相应的错误响应
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	Fail(c, statusOf(err), err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, catalog.ErrToolNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, repository.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInactiveUser):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrEmptyQuery),
		errors.Is(err, ingest.ErrUnsupportedType),
		errors.Is(err, ingest.ErrEmptyDocument),
		errors.Is(err, repository.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, embedding.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToolResult 工具结果响应
// 业务失败（未找到、空购物车等）返回 400 并带上结果，执行错误返回 500
func ToolResult(c *gin.Context, res *catalog.Result) {
	if res.Success {
		Success(c, res)
		return
	}
	status := http.StatusBadRequest
	if res.Internal() {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Code: status, Msg: res.Reason(), Data: res})
}
