package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/intentflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.Retriever = (*Retriever)(nil)

// fakeEmbedder returns fixed-direction vectors keyed by substring so tests
// can steer similarity ranking without a network.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		switch {
		case strings.Contains(strings.ToLower(t), "refund"):
			vectors[i] = []float64{1, 0, 0}
		case strings.Contains(strings.ToLower(t), "roaming"):
			vectors[i] = []float64{0, 1, 0}
		default:
			vectors[i] = []float64{0, 0, 1}
		}
	}
	return vectors, nil
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestSplitter_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)
	chunks := s.Split("Billing help: pay your bill online or by phone.")
	require.Len(t, chunks, 1)
}

func TestSplitter_LongTextChunksBounded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Paragraph about billing cycles and payment due dates for customers.\n\n")
	}
	s := NewSplitter(500, 50)
	chunks := s.Split(sb.String())
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 500)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

// Fragments close to the chunk size must not blow the bound once the overlap
// tail is carried forward; the overlap is dropped instead.
func TestSplitter_NearLimitFragmentsStayBounded(t *testing.T) {
	paragraph := strings.TrimSpace(strings.Repeat("billing cycle details ", 22)) // 483 chars
	text := paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	s := NewSplitter(500, 50)
	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 500, "chunk %d", i)
	}
}

func TestSplitter_EmptyText(t *testing.T) {
	s := NewSplitter(500, 50)
	assert.Nil(t, s.Split("   "))
}

func TestRetriever_KeywordSearchRanking(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a_refunds.md": "Refund policy: refund requests for duplicate charge issues and billing refund timing.",
		"b_roaming.md": "Roaming charges apply when traveling abroad.",
		"c_devices.md": "Device setup instructions: activate a new phone.",
	})
	r, err := NewRetriever(dir)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "refund for wrong charge", 3)
	require.NoError(t, err)
	require.Len(t, snippets, 2) // device doc has zero overlap and is excluded
	assert.Contains(t, snippets[0], "Refund policy")
	assert.Contains(t, snippets[1], "Roaming charges")
}

func TestRetriever_KeywordSearchStableTies(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.md": "billing first document",
		"b.md": "billing second document",
		"c.md": "billing third document",
	})
	r, err := NewRetriever(dir)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "billing", 2)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	// ties break by corpus order (files walked alphabetically)
	assert.Contains(t, snippets[0], "first")
	assert.Contains(t, snippets[1], "second")
}

func TestRetriever_SemanticPath(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.md": "Refund policy details for overcharged customers.",
		"b.md": "Roaming charges apply when traveling abroad.",
	})
	emb := &fakeEmbedder{}
	r, err := NewRetriever(dir, func(o *RetrieverOptions) { o.Embedder = emb })
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "how do I get a refund", 1)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Contains(t, snippets[0], "Refund policy")
	// index build + query embedding
	assert.Equal(t, 2, emb.calls)
}

func TestRetriever_DegradesToKeywordOnEmbedderFailure(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.md": "Refund policy details for overcharged customers.",
	})
	emb := &fakeEmbedder{err: errors.New("embeddings down")}
	r, err := NewRetriever(dir, func(o *RetrieverOptions) { o.Embedder = emb })
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "refund", 3)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Contains(t, snippets[0], "Refund policy")
}

func TestRetriever_PersistsAndReloadsIndex(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.md": "Refund policy details.",
		"b.md": "Roaming charges abroad.",
	})
	indexPath := filepath.Join(t.TempDir(), "index.json")

	emb := &fakeEmbedder{}
	r, err := NewRetriever(dir, func(o *RetrieverOptions) {
		o.Embedder = emb
		o.IndexPath = indexPath
	})
	require.NoError(t, err)
	_, err = r.Retrieve(context.Background(), "refund", 1)
	require.NoError(t, err)
	require.FileExists(t, indexPath)

	// a fresh retriever reuses the persisted index: only the query is embedded
	emb2 := &fakeEmbedder{}
	r2, err := NewRetriever(dir, func(o *RetrieverOptions) {
		o.Embedder = emb2
		o.IndexPath = indexPath
	})
	require.NoError(t, err)
	snippets, err := r2.Retrieve(context.Background(), "refund", 1)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, 1, emb2.calls)
}

func TestRetriever_MissingCorpusDir(t *testing.T) {
	r, err := NewRetriever(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	snippets, err := r.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, snippets)
}
