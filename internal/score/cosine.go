// Package score computes and presents the similarity between two texts.
package score

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0.0 for mismatched lengths or zero-magnitude vectors, so callers
// never divide by zero when an embedding degenerates.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
