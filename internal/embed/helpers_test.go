package embed

import "math"

// vecNorm returns the Euclidean length of v.
func vecNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// vecCosine returns the cosine similarity of a and b, or 0 when the
// shapes differ or either vector is all zeros.
func vecCosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	na, nb := vecNorm(a), vecNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
