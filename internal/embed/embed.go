// Package embed provides the sentence-embedding backends used by the
// segmenter: a local ONNX MiniLM model, an OpenAI-compatible endpoint and a
// deterministic hashing embedder, plus a persistent cache in front of any
// of them.
package embed

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/httpx"
	"github.com/suykerbuyk/podseg/internal/segment"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// Provider is an Embedder with an identity and resources to release.
type Provider interface {
	segment.Embedder
	// Name identifies the provider and model, e.g. "onnx/all-MiniLM-L6-v2".
	Name() string
	Close() error
}

type cacheIdentifier interface {
	CacheID() string
}

// CacheID names the vector space p produces. Vectors cached under one ID
// are interchangeable; providers whose output depends on more than Name
// reports implement CacheID.
func CacheID(p Provider) string {
	if c, ok := p.(cacheIdentifier); ok {
		return c.CacheID()
	}
	return p.Name()
}

// New builds the provider named by cfg.Provider.
func New(cfg config.EmbeddingConfig, log zerolog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "onnx":
		return NewONNX(ONNXOptions{
			Model:          cfg.Model,
			ModelPath:      cfg.ModelPath,
			TokenizerPath:  cfg.TokenizerPath,
			LibraryPath:    cfg.ONNXLibrary,
			MaxBatchTokens: cfg.MaxBatchTokens,
			MaxSeqLen:      cfg.MaxSeqLen,
		}, log)
	case "openai":
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("embedding provider openai: %s is not set", cfg.APIKeyEnv)
		}
		return NewOpenAI(httpx.New(cfg.Timeout(), log), cfg.BaseURL, key, cfg.Model, cfg.Dimensions), nil
	case "hashing":
		return NewHashing(cfg.Dimensions), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
