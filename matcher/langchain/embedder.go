package langchain

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// textEmbedder is the slice of the embedding service the matchers need.
type textEmbedder interface {
	embedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// serviceEmbedder generates normalized embeddings via an OpenAI-compatible API.
type serviceEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ textEmbedder = (*serviceEmbedder)(nil)

func newServiceEmbedder(config *Config) (*serviceEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &serviceEmbedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "langchain-embedder"),
	}, nil
}

// embedTexts generates embeddings for the texts, normalized so cosine
// similarity reduces to a dot product.
func (e *serviceEmbedder) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}

	for i, v := range vectors {
		vectors[i] = normalizeVector(v)
	}
	return vectors, nil
}

// normalizeVector scales a vector to unit length. Zero vectors are returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// formatScore renders a similarity score the way backends report it.
func formatScore(s float32) string {
	return fmt.Sprintf("%.4f", s)
}
