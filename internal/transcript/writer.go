package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var sentenceBreak = regexp.MustCompile(`([.!?]) +`)

// FormatTimestamp renders seconds as HH:MM:SS, truncating fractions.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// SplitSentences splits text after '.', '!' or '?' followed by spaces.
// Empty pieces are dropped.
func SplitSentences(text string) []string {
	marked := sentenceBreak.ReplaceAllString(text, "$1\n")
	var out []string
	for _, s := range strings.Split(marked, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Write emits segs as "[HH:MM:SS] text" lines separated by blank lines, the
// format Parse reads back.
func Write(w io.Writer, segs []Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		if _, err := fmt.Fprintf(bw, "[%s] %s\n\n", s.Timestamp, s.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
