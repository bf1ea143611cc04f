package segment

import (
	"fmt"
	"math"
	"sort"
)

// Smooth applies a centered moving average of width kernel. At the edges the
// window is truncated to the points that exist and the mean is taken over
// those points only, so the output never drifts toward zero.
func Smooth(values []float64, kernel int) ([]float64, error) {
	if kernel < 1 || kernel%2 == 0 {
		return nil, fmt.Errorf("smoothing kernel must be a positive odd number, got %d", kernel)
	}
	out := make([]float64, len(values))
	if kernel == 1 {
		copy(out, values)
		return out, nil
	}
	half := kernel / 2
	for i := range values {
		lo := max(0, i-half)
		hi := min(len(values), i+half+1)
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out, nil
}

// Percentile returns the p-th percentile of values using linear
// interpolation between the two closest ranks.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
