package retrieval

import "math"

// CosineSimilarity returns dot(a,b) / (|a|*|b|). Degenerate input
// (mismatched lengths, empty vectors, zero magnitude, NaN or Inf elements)
// scores 0 rather than erroring: a single bad embedding must never take
// down a whole request.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}
