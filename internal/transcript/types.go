package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Segment is one timestamped line of transcript text.
type Segment struct {
	Timestamp string `json:"timestamp"` // HH:MM:SS
	Text      string `json:"text"`
}

// Offset converts the segment's HH:MM:SS timestamp to a duration.
func (s Segment) Offset() (time.Duration, error) {
	parts := strings.Split(s.Timestamp, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s.Timestamp)
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("bad timestamp %q: %w", s.Timestamp, err)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// MalformedPolicy decides what happens to non-empty lines that do not carry
// a [HH:MM:SS] prefix.
type MalformedPolicy int

const (
	// SkipMalformed drops such lines silently.
	SkipMalformed MalformedPolicy = iota
	// FailOnMalformed aborts parsing with a *MalformedLineError.
	FailOnMalformed
)

func (p MalformedPolicy) String() string {
	switch p {
	case SkipMalformed:
		return "skip"
	case FailOnMalformed:
		return "fail"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a config value ("skip" or "fail") to a policy.
func ParsePolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return SkipMalformed, nil
	case "fail", "strict":
		return FailOnMalformed, nil
	}
	return SkipMalformed, fmt.Errorf("unknown malformed-line policy %q (want skip or fail)", s)
}

// MalformedLineError reports the first line rejected under FailOnMalformed.
type MalformedLineError struct {
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: missing [HH:MM:SS] prefix: %q", e.Line, e.Text)
}

// Stats summarizes a loaded transcript.
type Stats struct {
	Segments int
	Words    int
	First    string
	Last     string
	Span     time.Duration
}
