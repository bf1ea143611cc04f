package segment

import (
	"fmt"
	"math"
)

// Similarities computes the cosine similarity of each adjacent pair of
// embeddings. The result has len(embeddings)-1 entries.
func Similarities(embeddings [][]float32) ([]float64, error) {
	if len(embeddings) < 2 {
		return nil, &InsufficientDataError{Count: len(embeddings)}
	}
	sims := make([]float64, len(embeddings)-1)
	for i := 0; i < len(embeddings)-1; i++ {
		s, err := Cosine(embeddings[i], embeddings[i+1])
		if err != nil {
			return nil, fmt.Errorf("similarity %d/%d: %w", i, i+1, err)
		}
		sims[i] = s
	}
	return sims, nil
}

// Cosine returns a·b / (|a||b|). A zero vector has similarity 0 with
// anything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
