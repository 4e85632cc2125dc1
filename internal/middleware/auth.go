package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
	// 匿名用户 ID 通过该响应头返回，客户端后续请求可带上 X-User-ID 复用会话
	headerUserID = "X-User-ID"
)

// TokenValidator 校验 Bearer 令牌
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware 认证中间件
// 优先使用有效的 Bearer 令牌，其次 X-User-ID，都没有时生成匿名用户 ID
func AuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok && v != nil {
			if user, err := v.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set(ctxUserKey, user)
				c.Set(ctxUserIDKey, user.ID)
				c.Next()
				return
			}
			// 令牌无效时按匿名处理
		}

		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" || len(userID) > 64 {
			userID = uuid.New().String()
		}
		c.Header(headerUserID, userID)
		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

// RequireAuth 必须携带有效令牌，否则返回 401
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, 401, "missing or malformed Authorization header")
			return
		}
		user, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, 401, "invalid or expired token")
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxUserIDKey, user.ID)
		c.Next()
	}
}

// GetCurrentUser 从上下文获取已登录用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(ctxUserKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetUserID 从上下文获取当前用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "msg": msg})
}
