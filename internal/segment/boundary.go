package segment

// DetectBoundaries thresholds the smoothed similarity sequence at the given
// percentile and returns the accepted topic boundaries together with the
// threshold used.
//
// A similarity below the threshold between windows i and i+1 marks segment
// i+1 as the start of a new topic. Candidates are scanned in order and a
// candidate is accepted only when it lies at least minGap segments after the
// last accepted boundary (initially position 0).
func DetectBoundaries(smoothed []float64, percentile float64, minGap int) ([]int, float64) {
	if len(smoothed) == 0 {
		return nil, 0
	}
	threshold := Percentile(smoothed, percentile)

	var boundaries []int
	last := 0
	for i, v := range smoothed {
		if v >= threshold {
			continue
		}
		candidate := i + 1
		if candidate-last < minGap {
			continue
		}
		boundaries = append(boundaries, candidate)
		last = candidate
	}
	return boundaries, threshold
}
