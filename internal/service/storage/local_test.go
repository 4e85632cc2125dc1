package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/config"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Save(ctx, &SaveRequest{FileName: "faq.md", Reader: strings.NewReader("# FAQ")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "/faq.md"))

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "# FAQ", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		wantSuffix  string
	}{
		{"keeps name", "policy.pdf", "", "/policy.pdf"},
		{"strips directories", "../../secret/returns.txt", "", "/returns.txt"},
		{"extension from content type", "shipping", "text/markdown; charset=utf-8", "/shipping.md"},
		{"empty name", "", "application/json", "/upload.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := objectKey(&SaveRequest{FileName: tt.fileName, ContentType: tt.contentType})
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), "key %q", key)
			assert.NotContains(t, key, "..")
		})
	}
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Type: "local", Local: config.LocalStorageConfig{BasePath: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), config.StorageConfig{Type: "minio"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.StorageConfig{Type: "cos"})
	assert.Error(t, err)
}
