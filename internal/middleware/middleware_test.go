package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	if token == "good" {
		return &model.User{ID: "user-1", Username: "priya"}, nil
	}
	return nil, errors.New("invalid token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), LoggingMiddleware(zap.NewNop()))
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := GetUserID(c)
		_, authed := GetCurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "authed": authed})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(fakeValidator{}))

	tests := []struct {
		name       string
		headers    map[string]string
		wantUser   string
		wantAuthed bool
	}{
		{"bearer token", map[string]string{"Authorization": "Bearer good"}, `"user_id":"user-1"`, true},
		{"header user id", map[string]string{"X-User-ID": "guest-42"}, `"user_id":"guest-42"`, false},
		{"bad token falls back to header", map[string]string{"Authorization": "Bearer bad", "X-User-ID": "guest-42"}, `"user_id":"guest-42"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/whoami", tt.headers)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantUser)
			if tt.wantAuthed {
				assert.Contains(t, w.Body.String(), `"authed":true`)
			} else {
				assert.Contains(t, w.Body.String(), `"authed":false`)
			}
		})
	}

	t.Run("anonymous gets generated id", func(t *testing.T) {
		w := do(r, "/whoami", nil)
		require.Equal(t, http.StatusOK, w.Code)
		id := w.Header().Get("X-User-ID")
		assert.Len(t, id, 36)
		assert.Contains(t, w.Body.String(), id)
	})
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(RequireAuth(fakeValidator{}))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/whoami", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/whoami", map[string]string{"Authorization": "Token good"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/whoami", map[string]string{"Authorization": "Bearer bad"}).Code)

	w := do(r, "/whoami", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := newEngine()
	w := do(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal server error"}`, w.Body.String())
}
