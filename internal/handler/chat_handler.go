package handler

import (
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/service/chat"
	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	chat *chat.Service
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Message string `json:"message"`
}

// SearchRequest 文档检索请求，K 为 0 时使用默认条数
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k" binding:"min=0,max=50"`
}

// SearchHit 检索命中的分块
type SearchHit struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HistoryMessage 历史消息
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SendMessage 发送消息
// 对话失败时回复致歉文本，仍返回 200
// POST /api/v1/chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	reply := h.chat.SubmitMessage(c.Request.Context(), getUserID(c), req.Message)
	Success(c, reply)
}

// Search 直接检索文档
// POST /api/v1/search
func (h *ChatHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	docs, err := h.chat.SearchDocuments(c.Request.Context(), req.Query, req.K)
	if err != nil {
		Error(c, err)
		return
	}

	hits := make([]*SearchHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, &SearchHit{
			ID:       doc.ID,
			Content:  doc.Content,
			Source:   docstore.SourceOf(doc),
			Score:    doc.Score(),
			Metadata: publicMeta(doc.MetaData),
		})
	}
	Success(c, gin.H{
		"query":   req.Query,
		"results": hits,
		"total":   len(hits),
	})
}

// GetHistory 获取对话历史
// GET /api/v1/chat/history
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID := getUserID(c)
	msgs, err := h.chat.GetHistory(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}

	out := make([]*HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &HistoryMessage{Role: roleName(m.Role), Content: m.Content})
	}
	Success(c, gin.H{
		"user_id":  userID,
		"messages": out,
	})
}

// ClearHistory 清空对话历史
// DELETE /api/v1/chat/history
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	if err := h.chat.ClearHistory(c.Request.Context(), getUserID(c)); err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"cleared": true})
}

func roleName(r schema.RoleType) string {
	if r == schema.Assistant {
		return "assistant"
	}
	return string(r)
}

// publicMeta 去掉 eino 内部字段（下划线开头，如分数和向量）
func publicMeta(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}
