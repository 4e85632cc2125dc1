package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/service/docstore"
	"github.com/ashwinyue/shop-assistant/internal/service/embedding"
	"github.com/ashwinyue/shop-assistant/internal/testutil"
)

const dim = 64

type fixture struct {
	ingester *Ingester
	store    *docstore.MemoryStore
	embedder *testutil.Embedder
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	embedder := &testutil.Embedder{Dim: dim}

	ing, err := New(ctx, &Config{
		Store:    store,
		Embedder: embedding.NewProvider(embedder, 0),
	})
	require.NoError(t, err)
	return &fixture{ingester: ing, store: store, embedder: embedder, ctx: ctx}
}

func (f *fixture) search(t *testing.T, query string, k int) []string {
	t.Helper()
	docs, err := f.store.Search(f.ctx, testutil.HashVector(query, dim), k)
	require.NoError(t, err)
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = docstore.SourceOf(d)
	}
	return out
}

func longText(words int) string {
	vocab := []string{"cotton", "silk", "delivery", "return", "refund", "candle", "soap", "policy", "india", "order"}
	parts := make([]string, words)
	for i := range parts {
		parts[i] = vocab[i%len(vocab)]
	}
	return strings.Join(parts, " ")
}

func TestIngestText(t *testing.T) {
	f := newFixture(t)

	res, err := f.ingester.IngestText(f.ctx, "returns.md", "Items can be returned within 7 days of delivery.", map[string]any{"kind": "policy"})
	require.NoError(t, err)
	assert.Equal(t, "returns.md", res.Source)
	assert.Equal(t, 1, res.Chunks)
	assert.Zero(t, res.Replaced)
	require.Len(t, res.IDs, 1)

	docs, err := f.store.Search(f.ctx, testutil.HashVector("returned within 7 days", dim), 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, res.IDs[0], docs[0].ID)
	assert.Equal(t, "returns.md", docs[0].MetaData[docstore.MetaSource])
	assert.Equal(t, "policy", docs[0].MetaData["kind"])
	assert.Equal(t, 0, docs[0].MetaData[metaChunkIndex])
}

func TestIngestText_SplitsLongText(t *testing.T) {
	f := newFixture(t)

	res, err := f.ingester.IngestText(f.ctx, "guide.txt", longText(400), nil)
	require.NoError(t, err)
	assert.Greater(t, res.Chunks, 3)
	assert.Equal(t, res.Chunks, f.store.Len())

	docs, err := f.store.Search(f.ctx, testutil.HashVector("cotton silk", dim), res.Chunks)
	require.NoError(t, err)
	for _, d := range docs {
		assert.LessOrEqual(t, utf8.RuneCountInString(d.Content), defaultChunkSize)
	}
}

func TestIngest_ReplacesSource(t *testing.T) {
	f := newFixture(t)

	first, err := f.ingester.IngestText(f.ctx, "faq.md", longText(300), nil)
	require.NoError(t, err)
	_, err = f.ingester.IngestText(f.ctx, "shipping.md", "We ship across India.", nil)
	require.NoError(t, err)

	second, err := f.ingester.IngestText(f.ctx, "faq.md", "Cash on delivery is available.", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, second.Replaced)
	assert.Equal(t, 2, f.store.Len())
}

func TestIngest_EmbeddingFailureKeepsOldChunks(t *testing.T) {
	f := newFixture(t)

	_, err := f.ingester.IngestText(f.ctx, "faq.md", "Cash on delivery is available.", nil)
	require.NoError(t, err)

	f.embedder.Err = errors.New("connection refused")
	_, err = f.ingester.IngestText(f.ctx, "faq.md", "New answer.", nil)
	assert.ErrorIs(t, err, embedding.ErrUnavailable)
	assert.Equal(t, 1, f.store.Len())
}

func TestIngest_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.ingester.IngestText(f.ctx, "faq.md", "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = f.ingester.IngestText(f.ctx, "", "text", nil)
	assert.Error(t, err)

	_, err = f.ingester.IngestReader(f.ctx, "logo.png", "logo.png", strings.NewReader("binary"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = f.ingester.IngestReader(f.ctx, "bad.json", "bad.json", strings.NewReader(`{"a":`))
	assert.Error(t, err)

	_, err = New(f.ctx, &Config{})
	assert.Error(t, err)
}

func TestIngestReader_JSON(t *testing.T) {
	f := newFixture(t)

	res, err := f.ingester.IngestReader(f.ctx, "faqs.json", "faqs.json",
		strings.NewReader(`[{"question":"Do you offer COD?","answer":"Yes, cash on delivery is available."}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)

	docs, err := f.store.Search(f.ctx, testutil.HashVector("cash on delivery", dim), 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, `"answer": "Yes, cash on delivery is available."`)
}

func TestParsers(t *testing.T) {
	ctx := context.Background()
	docs, err := (&textParser{}).Parse(ctx, strings.NewReader("  \n "))
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = (&textParser{}).Parse(ctx, strings.NewReader("Hello 世界 🌍"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hello 世界 🌍", docs[0].Content)

	docs, err = (&jsonParser{}).Parse(ctx, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.html", "d.htm", "e.txt", "f.md", "g.json"} {
		assert.True(t, Supported(name), name)
	}
	for _, name := range []string{"a.png", "b", "c.xlsx"} {
		assert.False(t, Supported(name), name)
	}
}

func TestIngestPath(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.md"), []byte("# FAQ\n\nWe accept UPI and cards."), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "policies"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policies", "returns.txt"), []byte("Returns within 7 days."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte{0x89, 0x50}, 0o644))

	results, err := f.ingester.IngestPath(f.ctx, dir)
	require.NoError(t, err)

	sources := make([]string, len(results))
	for i, r := range results {
		sources[i] = r.Source
	}
	assert.ElementsMatch(t, []string{"faq.md", "returns.txt"}, sources)

	n, err := f.ingester.DeleteSource(f.ctx, "faq.md")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"returns.txt"}, f.search(t, "returns", 5))

	single, err := f.ingester.IngestPath(f.ctx, filepath.Join(dir, "faq.md"))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "faq.md", single[0].Source)
}

func TestWatch(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan error, 1)
	go func() { done <- f.ingester.Watch(ctx, dir, 20*time.Millisecond) }()
	// 等待监听注册
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(dir, "shipping.md")
	require.NoError(t, os.WriteFile(path, []byte("We ship across India in 5 to 10 days."), 0o644))
	assert.Eventually(t, func() bool { return f.store.Len() == 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.png"), []byte("x"), 0o644))
	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool { return f.store.Len() == 0 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}
