package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/segment"
)

// Cache stores vectors by model and text key.
type Cache interface {
	GetEmbeddings(ctx context.Context, model string, keys []string) (map[string][]float32, error)
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error
}

// Cached serves repeated texts from a Cache and sends only misses to the
// wrapped provider, in a single call.
type Cached struct {
	Provider
	cache Cache
	log   zerolog.Logger
}

func NewCached(p Provider, cache Cache, log zerolog.Logger) *Cached {
	return &Cached{Provider: p, cache: cache, log: log}
}

// Key identifies text in the cache.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns vectors for texts, embedding only cache misses. Cached
// vectors whose dimension differs from what the provider now returns are
// stale and embedded again.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = Key(t)
	}

	model := CacheID(c.Provider)
	hits, err := c.cache.GetEmbeddings(ctx, model, keys)
	if err != nil {
		c.log.Warn().Err(err).Msg("embedding cache lookup failed")
		hits = nil
	}
	if _, ok := dimension(hits); !ok {
		c.log.Warn().Str("model", model).Msg("cached embeddings have mixed dimensions, ignoring cache")
		hits = nil
	}

	fresh := make(map[string][]float32)
	if err := c.fill(ctx, texts, keys, hits, fresh); err != nil {
		return nil, err
	}
	hitDim, _ := dimension(hits)
	freshDim, _ := dimension(fresh)
	if hitDim != 0 && freshDim != 0 && hitDim != freshDim {
		c.log.Warn().Str("model", model).Int("cached", hitDim).Int("fresh", freshDim).
			Msg("cached embeddings have a stale dimension, refreshing")
		hits = nil
		if err := c.fill(ctx, texts, keys, nil, fresh); err != nil {
			return nil, err
		}
	}
	c.log.Debug().Int("texts", len(texts)).Int("embedded", len(fresh)).Msg("embedding cache")

	if len(fresh) > 0 {
		if err := c.cache.PutEmbeddings(ctx, model, fresh); err != nil {
			c.log.Warn().Err(err).Msg("embedding cache store failed")
		}
	}

	out := make([][]float32, len(texts))
	for i, k := range keys {
		if v, ok := fresh[k]; ok {
			out[i] = v
		} else if v, ok := hits[k]; ok {
			out[i] = v
		} else {
			return nil, fmt.Errorf("embedding for text %d missing after cache fill", i)
		}
	}
	return out, nil
}

// fill embeds, in one provider call, every distinct text found in neither
// hits nor fresh, and adds the results to fresh.
func (c *Cached) fill(ctx context.Context, texts, keys []string, hits, fresh map[string][]float32) error {
	var missTexts, missKeys []string
	seen := make(map[string]bool)
	for i, k := range keys {
		if _, ok := hits[k]; ok {
			continue
		}
		if _, ok := fresh[k]; ok || seen[k] {
			continue
		}
		seen[k] = true
		missTexts = append(missTexts, texts[i])
		missKeys = append(missKeys, k)
	}
	if len(missTexts) == 0 {
		return nil
	}

	vecs, err := c.Provider.Embed(ctx, missTexts)
	if err != nil {
		return err
	}
	if len(vecs) != len(missTexts) {
		return &segment.EmbeddingCountError{Texts: len(missTexts), Vectors: len(vecs)}
	}
	for i, k := range missKeys {
		fresh[k] = vecs[i]
	}
	return nil
}

// dimension returns the common vector length in m, 0 for an empty map, and
// false when lengths differ.
func dimension(m map[string][]float32) (int, bool) {
	dim := 0
	for _, v := range m {
		switch {
		case dim == 0:
			dim = len(v)
		case len(v) != dim:
			return 0, false
		}
	}
	return dim, true
}
