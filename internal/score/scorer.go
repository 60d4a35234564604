package score

import (
	"context"
	"log/slog"

	"github.com/metehan777/cosine-similarity-aio/internal/embed"
	"github.com/metehan777/cosine-similarity-aio/internal/output"
)

// EmbedderFactory builds the embedder on first use. Construction stays
// inside the fail-soft boundary: a backend that cannot even be created is
// reported the same way as one that fails mid-request.
type EmbedderFactory func(ctx context.Context) (embed.Embedder, error)

// Scorer embeds a query and a text and scores their similarity.
type Scorer struct {
	factory EmbedderFactory
	out     *output.Writer
}

// NewScorer creates a scorer that reports through the given writer.
func NewScorer(factory EmbedderFactory, out *output.Writer) *Scorer {
	return &Scorer{
		factory: factory,
		out:     out,
	}
}

// Score computes the cosine similarity between query and text.
// Failures never abort the run: the error is printed and 0.0 is returned,
// which downstream reads as "Very low similarity".
func (s *Scorer) Score(ctx context.Context, query, text string) float64 {
	similarity, err := s.compute(ctx, query, text)
	if err != nil {
		s.out.Plainf("Error during embedding calculation: %v", err)
		slog.Error("embedding_failed", slog.String("error", err.Error()))
		return 0.0
	}

	slog.Debug("similarity_computed", slog.Float64("score", similarity))
	return similarity
}

// compute builds the embedder, embeds both inputs independently and
// returns their cosine similarity.
func (s *Scorer) compute(ctx context.Context, query, text string) (float64, error) {
	embedder, err := s.factory(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = embedder.Close() }()

	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		return 0, err
	}

	textVec, err := embedder.Embed(ctx, text)
	if err != nil {
		return 0, err
	}

	return CosineSimilarity(queryVec, textVec), nil
}

// Present prints the score block: a blank line, the four-decimal score and
// its interpretation.
func (s *Scorer) Present(similarity float64) {
	s.out.Newline()
	s.out.Plainf("Cosine Similarity between query and text: %.4f", similarity)
	s.out.Plainf("Interpretation: %s", Interpret(similarity))
}
