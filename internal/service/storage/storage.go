// Package storage 上传的原始文档存储，支持本地磁盘和 MinIO
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ashwinyue/shop-assistant/internal/config"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// Storage 文件存储接口
type Storage interface {
	// Save 保存文件，返回对象键
	Save(ctx context.Context, req *SaveRequest) (string, error)
	// Get 读取文件内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除文件，不存在时不报错
	Delete(ctx context.Context, key string) error
}

// SaveRequest 保存文件请求
type SaveRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Type 存储类型
type Type string

const (
	TypeLocal Type = "local"
	TypeMinIO Type = "minio"
)

// New 按配置创建存储
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch Type(cfg.Type) {
	case TypeLocal, "":
		basePath := cfg.Local.BasePath
		if basePath == "" {
			basePath = "./data/uploads"
		}
		return NewLocalStorage(basePath)
	case TypeMinIO:
		m := cfg.MinIO
		if m.Endpoint == "" || m.AccessKey == "" || m.SecretKey == "" || m.Bucket == "" {
			return nil, fmt.Errorf("missing required MinIO config")
		}
		return NewMinIOStorage(ctx, &MinIOConfig{
			Endpoint:   m.Endpoint,
			AccessKey:  m.AccessKey,
			SecretKey:  m.SecretKey,
			BucketName: m.Bucket,
			UseSSL:     m.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// objectKey 生成 {uuid}/{原文件名}，保留文件名以便按扩展名解析
func objectKey(req *SaveRequest) string {
	name := path.Base(filepath.ToSlash(strings.TrimSpace(req.FileName)))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	if filepath.Ext(name) == "" {
		name += extensionByContentType(req.ContentType)
	}
	return uuid.New().String() + "/" + name
}

// extensionByContentType 根据内容类型返回扩展名
func extensionByContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.TrimSpace(contentType) {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/plain":
		return ".txt"
	case "text/markdown":
		return ".md"
	case "application/json":
		return ".json"
	case "text/html":
		return ".html"
	default:
		return ".bin"
	}
}
