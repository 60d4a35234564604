// Package embed provides text embedding for cosim.
package embed

import (
	"context"
	"math"
	"time"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the model in use.
	ModelName() string

	// Available checks if the embedder is ready for use.
	Available(ctx context.Context) bool

	// Close releases any resources held by the embedder.
	Close() error
}

const (
	// DefaultDimensions is the embedding dimension of the default model.
	DefaultDimensions = 768

	// DefaultTimeout is the default timeout for a single embedding request.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the default number of texts per batch request.
	DefaultBatchSize = 32
)

// normalizeVector normalizes a vector to unit length (L2 normalization).
// Normalized vectors make cosine similarity a plain dot product and keep
// scores comparable across providers.
func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}

	return normalized
}
