package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/suykerbuyk/podseg/internal/segment"
)

const (
	ruleWidth = 60
	wrapWidth = 80
	title     = "TOPIC SEGMENTATION REPORT"
)

// WriteText writes the plain-text topic report.
func WriteText(w io.Writer, topics []segment.Topic) error {
	bw := bufio.NewWriter(w)
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	fmt.Fprintf(bw, "%s\n%s%s\n%s\n\n", heavy, strings.Repeat(" ", 18), title, heavy)

	for i, t := range topics {
		fmt.Fprintf(bw, "🔹 TOPIC %d\n", i+1)
		fmt.Fprintf(bw, "%s\n", light)
		fmt.Fprintf(bw, "Time Range   : %s  →  %s\n", t.StartTime(), t.EndTime())
		fmt.Fprintf(bw, "Segment Count: %d\n\n", len(t.Segments))
		bw.WriteString("Transcript:\n")
		for _, s := range t.Segments {
			fmt.Fprintf(bw, "• %s\n", strings.Join(Wrap(s.Text, wrapWidth), "\n"))
		}
		fmt.Fprintf(bw, "\n%s\n\n", light)
	}
	return bw.Flush()
}

// Wrap fills text into lines of at most width runes. Whitespace runs
// collapse to single spaces; words longer than width are split across
// lines, starting on the current line when there is room.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	var lines []string
	var cur []rune

	for i := 0; i < len(words); {
		w := []rune(words[i])
		sep := 0
		if len(cur) > 0 {
			sep = 1
		}
		if len(cur)+sep+len(w) <= width {
			if sep == 1 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
			i++
			continue
		}
		if len(w) > width && len(cur)+sep < width {
			if sep == 1 {
				cur = append(cur, ' ')
			}
			n := width - len(cur)
			cur = append(cur, w[:n]...)
			words[i] = string(w[n:])
		}
		lines = append(lines, string(cur))
		cur = cur[:0]
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
