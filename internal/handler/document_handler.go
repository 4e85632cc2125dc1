package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/service/ingest"
	"github.com/ashwinyue/shop-assistant/internal/service/storage"
)

// 上传文件大小上限
const maxUploadBytes = 20 << 20

// DocumentHandler 知识库文档处理器
type DocumentHandler struct {
	ingester *ingest.Ingester
	files    storage.Storage
}

// NewDocumentHandler 创建文档处理器，files 为 nil 时上传的原文件不落盘
func NewDocumentHandler(ingester *ingest.Ingester, files storage.Storage) *DocumentHandler {
	return &DocumentHandler{ingester: ingester, files: files}
}

// IngestTextRequest 文本入库请求
type IngestTextRequest struct {
	Source   string         `json:"source" binding:"required"`
	Content  string         `json:"content" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}

// IngestText 文本入库，同一 source 重复提交会替换旧分块
// POST /api/v1/documents
func (h *DocumentHandler) IngestText(c *gin.Context) {
	var req IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	res, err := h.ingester.IngestText(c.Request.Context(), strings.TrimSpace(req.Source), req.Content, req.Metadata)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, res)
}

// Upload 上传文件并入库
// 支持 pdf、docx、html、txt、md、json，source 默认为文件名
// POST /api/v1/documents/upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	if fileHeader.Size > maxUploadBytes {
		Fail(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	name := filepath.Base(fileHeader.Filename)
	if !ingest.Supported(name) {
		BadRequest(c, ingest.ErrUnsupportedType.Error()+": "+filepath.Ext(name))
		return
	}
	source := strings.TrimSpace(c.PostForm("source"))
	if source == "" {
		source = name
	}

	ctx := c.Request.Context()

	var key string
	if h.files != nil {
		key, err = h.save(c, fileHeader, name)
		if err != nil {
			Error(c, err)
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		Error(c, err)
		return
	}
	defer f.Close()

	res, err := h.ingester.IngestReader(ctx, source, name, f)
	if err != nil {
		if key != "" {
			_ = h.files.Delete(ctx, key)
		}
		Error(c, err)
		return
	}

	Created(c, gin.H{
		"file_key": key,
		"result":   res,
	})
}

func (h *DocumentHandler) save(c *gin.Context, fileHeader *multipart.FileHeader, name string) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return h.files.Save(c.Request.Context(), &storage.SaveRequest{
		FileName:    name,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      f,
	})
}

// GetFile 下载上传的原文件
// GET /api/v1/documents/files/*key
func (h *DocumentHandler) GetFile(c *gin.Context) {
	if h.files == nil {
		ServiceUnavailable(c, "file storage is not configured")
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")

	rc, err := h.files.Get(c.Request.Context(), key)
	if err != nil {
		Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(key)+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// DeleteChunk 按 ID 删除分块
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteChunk(c *gin.Context) {
	if err := h.ingester.DeleteChunks(c.Request.Context(), []string{c.Param("id")}); err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"deleted": c.Param("id")})
}

// DeleteSource 删除某个来源的全部分块
// DELETE /api/v1/documents?source=
func (h *DocumentHandler) DeleteSource(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	if source == "" {
		BadRequest(c, "source is required")
		return
	}
	n, err := h.ingester.DeleteSource(c.Request.Context(), source)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"source": source, "deleted": n})
}
