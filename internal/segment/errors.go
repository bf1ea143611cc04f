package segment

import "fmt"

// InsufficientSegmentsError is returned before any embedding work when the
// transcript holds fewer segments than the configured minimum.
type InsufficientSegmentsError struct {
	Count int
	Min   int
}

func (e *InsufficientSegmentsError) Error() string {
	return fmt.Sprintf("not enough segments for topic segmentation: have %d, need at least %d", e.Count, e.Min)
}

// InsufficientDataError is returned by Similarities when there are no
// adjacent embedding pairs to compare.
type InsufficientDataError struct {
	Count int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need at least 2 embeddings to compute similarities, got %d", e.Count)
}

// EmbeddingCountError reports an embedder that returned a different number
// of vectors than it was given texts.
type EmbeddingCountError struct {
	Texts   int
	Vectors int
}

func (e *EmbeddingCountError) Error() string {
	return fmt.Sprintf("embedder returned %d vectors for %d texts", e.Vectors, e.Texts)
}
