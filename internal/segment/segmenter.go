// Package segment splits a timestamped transcript into topics by comparing
// sentence embeddings of overlapping context windows.
package segment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/transcript"
)

// Embedder maps texts to fixed-length vectors, one per text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc adapts a plain function to Embedder.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// Config holds the tunable parameters of the segmenter.
type Config struct {
	// WindowSize is the number of segments joined into each context window.
	WindowSize int
	// SmoothingKernel is the width of the moving average; 1 disables smoothing.
	SmoothingKernel int
	// Percentile of the smoothed similarities used as the boundary threshold.
	// Lower values produce fewer topics.
	Percentile float64
	// MinTopicSize is the minimum distance between accepted boundaries.
	MinTopicSize int
	// MinSegments is the smallest transcript that will be segmented at all.
	MinSegments int
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize:      3,
		SmoothingKernel: 3,
		Percentile:      20,
		MinTopicSize:    3,
		MinSegments:     3,
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.WindowSize < 1:
		return fmt.Errorf("window size must be >= 1, got %d", c.WindowSize)
	case c.SmoothingKernel < 1 || c.SmoothingKernel%2 == 0:
		return fmt.Errorf("smoothing kernel must be a positive odd number, got %d", c.SmoothingKernel)
	case c.Percentile < 0 || c.Percentile > 100:
		return fmt.Errorf("percentile must be within [0, 100], got %g", c.Percentile)
	case c.MinTopicSize < 1:
		return fmt.Errorf("minimum topic size must be >= 1, got %d", c.MinTopicSize)
	case c.MinSegments < 2:
		return fmt.Errorf("minimum segment count must be >= 2, got %d", c.MinSegments)
	}
	return nil
}

// Result carries the topics plus the intermediate sequences, which the
// report and history layers record.
type Result struct {
	Topics       []Topic
	Boundaries   []int
	Similarities []float64
	Smoothed     []float64
	Threshold    float64
}

// Segmenter runs the windowing, similarity, smoothing, boundary detection
// and grouping steps over one transcript.
type Segmenter struct {
	cfg      Config
	embedder Embedder
	log      zerolog.Logger
}

// New creates a Segmenter. It fails if cfg is invalid or embedder is nil.
func New(cfg Config, embedder Embedder, log zerolog.Logger) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("segment: embedder is required")
	}
	return &Segmenter{
		cfg:      cfg,
		embedder: embedder,
		log:      log.With().Str("component", "segment").Logger(),
	}, nil
}

// Config returns the parameters the segmenter was built with.
func (s *Segmenter) Config() Config { return s.cfg }

// Segment partitions segs into topics. The embedder is called once with all
// windows; its errors are returned wrapped and abort the run.
func (s *Segmenter) Segment(ctx context.Context, segs []transcript.Segment) (*Result, error) {
	if len(segs) < s.cfg.MinSegments {
		return nil, &InsufficientSegmentsError{Count: len(segs), Min: s.cfg.MinSegments}
	}

	windows := BuildWindows(segs, s.cfg.WindowSize)
	s.log.Debug().Int("segments", len(segs)).Int("window", s.cfg.WindowSize).Msg("embedding windows")

	embeddings, err := s.embedder.Embed(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("embed windows: %w", err)
	}
	if len(embeddings) != len(windows) {
		return nil, &EmbeddingCountError{Texts: len(windows), Vectors: len(embeddings)}
	}

	sims, err := Similarities(embeddings)
	if err != nil {
		return nil, err
	}
	smoothed, err := Smooth(sims, s.cfg.SmoothingKernel)
	if err != nil {
		return nil, err
	}
	boundaries, threshold := DetectBoundaries(smoothed, s.cfg.Percentile, s.cfg.MinTopicSize)
	topics := Group(segs, boundaries)

	s.log.Debug().
		Float64("threshold", threshold).
		Ints("boundaries", boundaries).
		Int("topics", len(topics)).
		Msg("segmentation complete")

	return &Result{
		Topics:       topics,
		Boundaries:   boundaries,
		Similarities: sims,
		Smoothed:     smoothed,
		Threshold:    threshold,
	}, nil
}
