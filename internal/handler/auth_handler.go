package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/middleware"
	"github.com/ashwinyue/shop-assistant/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, resp)
}

// Me 当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}
	Success(c, user.Profile())
}

// Logout 吊销当前用户的全部令牌
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), getUserID(c)); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}
