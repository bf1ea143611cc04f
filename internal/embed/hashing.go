package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/suykerbuyk/podseg/internal/sanitize"
)

// DefaultHashingDims is used when no dimension is configured.
const DefaultHashingDims = 512

// Hashing embeds text with the hashing trick over unigrams and bigrams of
// the normalized words. It needs no model, is fully deterministic, and
// captures lexical overlap only.
type Hashing struct {
	dims int
}

func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = DefaultHashingDims
	}
	return &Hashing{dims: dims}
}

func (h *Hashing) Name() string { return fmt.Sprintf("hashing/%d", h.dims) }

func (h *Hashing) Close() error { return nil }

func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *Hashing) vector(text string) []float32 {
	v := make([]float32, h.dims)
	words := strings.Fields(sanitize.Normalize(text))
	for i, w := range words {
		h.add(v, w, 1)
		if i > 0 {
			h.add(v, words[i-1]+" "+w, 0.5)
		}
	}
	Normalize(v)
	return v
}

// add hashes feature into a bucket; one hash bit picks the sign so
// collisions tend to cancel.
func (h *Hashing) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
