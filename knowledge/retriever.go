package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/intentflow/logging"
)

// Document is a single corpus chunk with its origin file.
type Document struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// persistedIndex is the on-disk representation of a built embedding index.
type persistedIndex struct {
	Documents []Document  `json:"documents"`
	Vectors   [][]float64 `json:"vectors"`
}

// RetrieverOptions configure a Retriever.
type RetrieverOptions struct {
	// Embedder enables the semantic path; nil keeps the retriever on keyword search.
	Embedder Embedder
	// IndexPath persists the embedding index as JSON; empty disables persistence.
	IndexPath string
	// ChunkSize and ChunkOverlap tune the splitter.
	ChunkSize    int
	ChunkOverlap int
	// EmbedTimeout bounds index build and query embedding calls.
	EmbedTimeout time.Duration
	Logger       logging.Logger
}

// Retriever serves ranked context snippets from a markdown corpus. The
// preferred path is cosine similarity over an embedding index; when the
// embedder is absent or errors, retrieval silently degrades to
// keyword-overlap scoring over the raw chunks.
type Retriever struct {
	docs     []Document
	embedder Embedder
	timeout  time.Duration
	logger   logging.Logger

	indexPath string
	indexOnce sync.Once
	vectors   [][]float64
	indexErr  error
}

// NewRetriever loads and chunks every markdown document under docsPath. A
// missing or empty corpus directory is not an error; the retriever simply has
// nothing to return.
func NewRetriever(docsPath string, optFns ...func(o *RetrieverOptions)) (*Retriever, error) {
	opts := RetrieverOptions{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		EmbedTimeout: 30 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	docs, err := loadCorpus(docsPath, NewSplitter(opts.ChunkSize, opts.ChunkOverlap))
	if err != nil {
		return nil, err
	}

	return &Retriever{
		docs:      docs,
		embedder:  opts.Embedder,
		timeout:   opts.EmbedTimeout,
		logger:    opts.Logger,
		indexPath: opts.IndexPath,
	}, nil
}

// loadCorpus walks docsPath collecting *.md files in path order and splits
// them into chunks. The stable order matters: keyword-search ties are broken
// by original corpus position.
func loadCorpus(docsPath string, splitter *Splitter) ([]Document, error) {
	if docsPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(docsPath); os.IsNotExist(err) {
		return nil, nil
	}

	var docs []Document
	err := filepath.WalkDir(docsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read corpus file %s: %w", path, err)
		}
		for _, chunk := range splitter.Split(string(data)) {
			docs = append(docs, Document{Source: path, Content: chunk})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", docsPath, err)
	}
	return docs, nil
}

// Documents returns the loaded corpus chunks in order.
func (r *Retriever) Documents() []Document {
	out := make([]Document, len(r.docs))
	copy(out, r.docs)
	return out
}

// Retrieve returns up to k snippet texts ranked most-relevant first. It never
// returns an error for a degraded search path; an error means the corpus
// itself is unusable, which callers still treat as "no context".
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || len(r.docs) == 0 {
		return nil, nil
	}

	if r.embedder != nil {
		start := time.Now()
		snippets, err := r.semanticSearch(ctx, query, k)
		if err == nil {
			r.logRetrieval("semantic", len(snippets), time.Since(start), nil)
			return snippets, nil
		}
		r.logRetrieval("semantic", 0, time.Since(start), err)
	}

	start := time.Now()
	snippets := r.keywordSearch(query, k)
	r.logRetrieval("keyword", len(snippets), time.Since(start), nil)
	return snippets, nil
}

func (r *Retriever) logRetrieval(mode string, hits int, dur time.Duration, err error) {
	if ifl, ok := r.logger.(*logging.IntentFlowLogger); ok {
		ifl.LogRetrieval(mode, hits, dur, err)
		return
	}
	if err != nil {
		r.logger.Warn("knowledge retrieval degraded", "mode", mode, "error", err)
		return
	}
	r.logger.Debug("knowledge retrieval completed", "mode", mode, "hits", hits, "duration", dur)
}

// semanticSearch embeds the query and ranks chunks by cosine similarity. The
// chunk index is built once per retriever lifetime and reused; a failed build
// is remembered so subsequent calls go straight to keyword search.
func (r *Retriever) semanticSearch(ctx context.Context, query string, k int) ([]string, error) {
	if err := r.ensureIndex(ctx); err != nil {
		return nil, err
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	queryVecs, err := r.embedder.Embed(embedCtx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(r.vectors))
	for i, vec := range r.vectors {
		ranked[i] = scored{idx: i, score: cosineSimilarity(queryVecs[0], vec)}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	snippets := make([]string, 0, k)
	for _, s := range ranked[:k] {
		snippets = append(snippets, r.docs[s.idx].Content)
	}
	return snippets, nil
}

// ensureIndex builds (or loads) the embedding index exactly once.
func (r *Retriever) ensureIndex(ctx context.Context) error {
	r.indexOnce.Do(func() {
		if r.loadIndex() {
			return
		}

		texts := make([]string, len(r.docs))
		for i, d := range r.docs {
			texts[i] = d.Content
		}
		buildCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		vectors, err := r.embedder.Embed(buildCtx, texts)
		if err != nil {
			r.indexErr = fmt.Errorf("build embedding index: %w", err)
			return
		}
		r.vectors = vectors
		r.saveIndex()
	})
	return r.indexErr
}

// loadIndex restores a persisted index when it matches the current corpus.
func (r *Retriever) loadIndex() bool {
	if r.indexPath == "" {
		return false
	}
	data, err := os.ReadFile(r.indexPath)
	if err != nil {
		return false
	}
	var idx persistedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return false
	}
	if len(idx.Documents) != len(r.docs) || len(idx.Vectors) != len(r.docs) {
		return false
	}
	for i := range idx.Documents {
		if idx.Documents[i].Content != r.docs[i].Content {
			return false
		}
	}
	r.vectors = idx.Vectors
	return true
}

// saveIndex persists the built index; failures are logged and ignored since
// the in-memory index keeps working.
func (r *Retriever) saveIndex() {
	if r.indexPath == "" {
		return
	}
	data, err := json.Marshal(persistedIndex{Documents: r.docs, Vectors: r.vectors})
	if err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(r.indexPath), 0o755); mkErr == nil {
			err = os.WriteFile(r.indexPath, data, 0o644)
		} else {
			err = mkErr
		}
	}
	if err != nil {
		r.logger.Warn("failed to persist embedding index", "path", r.indexPath, "error", err)
	}
}

// keywordSearch scores each chunk by the count of query words appearing in
// its lowercased text, keeps positive scores, and returns the top k in
// non-increasing score order. The sort is stable so ties preserve original
// corpus order.
func (r *Retriever) keywordSearch(query string, k int) []string {
	words := strings.Fields(strings.ToLower(query))

	type scored struct {
		idx   int
		score int
	}
	var ranked []scored
	for i, doc := range r.docs {
		content := strings.ToLower(doc.Content)
		score := 0
		for _, w := range words {
			if strings.Contains(content, w) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	snippets := make([]string, 0, k)
	for _, s := range ranked[:k] {
		snippets = append(snippets, r.docs[s.idx].Content)
	}
	return snippets
}
