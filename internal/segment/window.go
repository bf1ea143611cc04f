package segment

import (
	"strings"

	"github.com/suykerbuyk/podseg/internal/transcript"
)

// BuildWindows returns one context window per segment: the segment's text
// joined with the texts of the following size-1 segments. Windows near the
// end of the sequence shrink instead of wrapping or padding.
func BuildWindows(segs []transcript.Segment, size int) []string {
	if size < 1 {
		size = 1
	}
	windows := make([]string, len(segs))
	for i := range segs {
		end := min(i+size, len(segs))
		parts := make([]string, 0, end-i)
		for _, s := range segs[i:end] {
			parts = append(parts, s.Text)
		}
		windows[i] = strings.Join(parts, " ")
	}
	return windows
}
