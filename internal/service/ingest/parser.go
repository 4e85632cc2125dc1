package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// supportedExts 可解析的文件扩展名
var supportedExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
	".json": true,
}

// Supported 文件是否可解析
func Supported(fileName string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(fileName))]
}

// newParser 按扩展名创建解析器
func newParser(ctx context.Context, fileName string) (einoparser.Parser, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	switch ext {
	case ".pdf":
		return pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	case ".docx":
		return docx.NewDocxParser(ctx, &docx.Config{
			ToSections:      false,
			IncludeComments: false,
			IncludeHeaders:  true,
			IncludeFooters:  false,
			IncludeTables:   true,
		})
	case ".html", ".htm":
		bodySelector := "body"
		return html.NewParser(ctx, &html.Config{
			Selector: &bodySelector,
		})
	case ".txt", ".md":
		return &textParser{}, nil
	case ".json":
		return &jsonParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// textParser 纯文本解析器
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return []*schema.Document{}, nil
	}
	return []*schema.Document{{Content: text, MetaData: map[string]any{}}}, nil
}

// jsonParser 将整个 JSON 文档格式化为一段文本，交给分块器切分
type jsonParser struct{}

func (p *jsonParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return []*schema.Document{}, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return []*schema.Document{{Content: buf.String(), MetaData: map[string]any{}}}, nil
}
