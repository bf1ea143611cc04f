package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/suykerbuyk/podseg/internal/archive"
)

var linePattern = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\s*(.*)$`)

// ParseFile reads a timestamped transcript. Files ending in .zst are
// decompressed on the fly.
func ParseFile(path string, policy MalformedPolicy) ([]Segment, error) {
	rc, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer rc.Close()
	return Parse(rc, policy)
}

// Parse reads "[HH:MM:SS] text" lines from r. Blank lines are ignored under
// either policy.
func Parse(r io.Reader, policy MalformedPolicy) ([]Segment, error) {
	var segs []Segment
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			if policy == FailOnMalformed {
				return nil, &MalformedLineError{Line: lineNum, Text: line}
			}
			continue
		}
		segs = append(segs, Segment{Timestamp: m[1], Text: m[2]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return segs, nil
}

// ComputeStats counts words and measures the time span covered by segs.
func ComputeStats(segs []Segment) Stats {
	st := Stats{Segments: len(segs)}
	if len(segs) == 0 {
		return st
	}
	for _, s := range segs {
		st.Words += len(strings.Fields(s.Text))
	}
	st.First = segs[0].Timestamp
	st.Last = segs[len(segs)-1].Timestamp

	start, err1 := segs[0].Offset()
	end, err2 := segs[len(segs)-1].Offset()
	if err1 == nil && err2 == nil && end > start {
		st.Span = end - start
	}
	return st
}

// Text joins all segment texts with single spaces.
func Text(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
