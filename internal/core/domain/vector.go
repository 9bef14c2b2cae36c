package domain

import "math"

// CosineDistance returns 1 minus the cosine similarity of a and b.
// Lower is more similar. Vectors of different lengths, and zero vectors,
// yield the maximum distance of 1 so they rank last rather than erroring in
// the middle of a scan; dimensionality is enforced at write time.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
