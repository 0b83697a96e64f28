package knowledge

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/intentflow/model"
)

// Embedder converts texts into dense vectors for similarity search. The
// retriever treats any error as "semantic search unavailable" and degrades to
// keyword search; embedding generation internals are out of scope here.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAIEmbedder implements Embedder via the OpenAI Embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// OpenAIEmbedderOptions configure an OpenAIEmbedder.
type OpenAIEmbedderOptions struct {
	Model  openai.EmbeddingModel
	APIKey string
}

// NewOpenAIEmbedder constructs an embedder, returning model.ErrUnavailable
// when no API key is configured so the retriever can stay on the keyword path.
func NewOpenAIEmbedder(optFns ...func(o *OpenAIEmbedderOptions)) (*OpenAIEmbedder, error) {
	opts := OpenAIEmbedderOptions{Model: openai.EmbeddingModelTextEmbedding3Small}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: no api key configured: %w", model.ErrUnavailable)
	}
	client := openai.NewClient(option.WithAPIKey(opts.APIKey))
	return &OpenAIEmbedder{client: &client, model: opts.Model}, nil
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings error: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// for zero-length vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
