package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/service/llm"
	"github.com/ashwinyue/shop-assistant/internal/testutil"
)

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []int
	}{
		{"plain list", "2, 0, 1", 3, []int{2, 0, 1}},
		{"no integers", "I cannot rank these.", 3, nil},
		{"out of range dropped", "5, 1, 0", 3, []int{1, 0}},
		{"hyphen is a separator", "1-2", 3, []int{1, 2}},
		{"hyphen range", "0-2", 3, []int{0, 2}},
		{"leading hyphen", "-1, 2", 3, []int{1, 2}},
		{"duplicates dropped", "1, 1, 0, 1", 3, []int{1, 0}},
		{"embedded in prose", "Most relevant: [2], then [0].", 3, []int{2, 0}},
		{"empty", "", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIndices(tt.in, tt.n))
		})
	}
}

func threeDocs() []*schema.Document {
	return []*schema.Document{newDoc("doc0", "a"), newDoc("doc1", "b"), newDoc("doc2", "c")}
}

func TestReranker_Rerank(t *testing.T) {
	tests := []struct {
		name    string
		model   *testutil.ChatModel
		want    []string
		wantErr bool
	}{
		{
			name:  "reorders by returned indexes",
			model: &testutil.ChatModel{Content: "2, 0, 1"},
			want:  []string{"doc2", "doc0", "doc1"},
		},
		{
			name:  "hyphen separated indexes",
			model: &testutil.ChatModel{Content: "1-2"},
			want:  []string{"doc1", "doc2", "doc0"},
		},
		{
			name:    "no integers keeps original order",
			model:   &testutil.ChatModel{Content: "all are relevant"},
			want:    []string{"doc0", "doc1", "doc2"},
			wantErr: true,
		},
		{
			name:    "model error keeps original order",
			model:   &testutil.ChatModel{Err: errors.New("timeout")},
			want:    []string{"doc0", "doc1", "doc2"},
			wantErr: true,
		},
		{
			name:  "unmentioned appended in original order",
			model: &testutil.ChatModel{Content: "2"},
			want:  []string{"doc2", "doc0", "doc1"},
		},
		{
			name:  "out of range ignored",
			model: &testutil.ChatModel{Content: "7, 1"},
			want:  []string{"doc1", "doc0", "doc2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReranker(llm.NewCaller(tt.model, time.Second), 400)
			got, err := r.Rerank(context.Background(), "query", threeDocs())
			assert.Equal(t, tt.want, ids(got))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReranker_SkipsSingleDoc(t *testing.T) {
	m := &testutil.ChatModel{Content: "0"}
	r := NewReranker(llm.NewCaller(m, time.Second), 400)

	got, err := r.Rerank(context.Background(), "q", []*schema.Document{newDoc("only", "a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, ids(got))
	assert.Equal(t, 0, m.CallCount())
}

func TestReranker_SendsPreviewOnly(t *testing.T) {
	m := &testutil.ChatModel{Content: "1, 0"}
	r := NewReranker(llm.NewCaller(m, time.Second), 400)

	long := &schema.Document{ID: "long", Content: strings.Repeat("a", 400) + strings.Repeat("Z", 100)}
	_, err := r.Rerank(context.Background(), "q", []*schema.Document{long, newDoc("short", "b")})
	require.NoError(t, err)

	prompt := m.LastPrompt()
	assert.Contains(t, prompt, strings.Repeat("a", 400))
	assert.NotContains(t, prompt, "Z")
	assert.Contains(t, prompt, "[0]")
	assert.Contains(t, prompt, "[1] content of short")
}

func TestReranker_NoModel(t *testing.T) {
	r := NewReranker(llm.NewCaller(nil, 0), 400)
	got, err := r.Rerank(context.Background(), "q", threeDocs())
	assert.ErrorIs(t, err, llm.ErrNoModel)
	assert.Equal(t, []string{"doc0", "doc1", "doc2"}, ids(got))
}
