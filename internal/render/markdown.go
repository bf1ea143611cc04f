package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MarkdownReport renders the report as a markdown document with YAML
// frontmatter.
func MarkdownReport(r Report) string {
	var b strings.Builder
	res := r.Result

	// Frontmatter
	b.WriteString("---\n")
	b.WriteString("type: topic-report\n")
	b.WriteString(fmt.Sprintf("source: \"%s\"\n", escapeYAML(r.Source)))
	if r.Provider != "" {
		b.WriteString(fmt.Sprintf("provider: %s\n", r.Provider))
	}
	b.WriteString(fmt.Sprintf("segments: %d\n", r.Segments))
	if st := r.Stats; st != nil {
		b.WriteString(fmt.Sprintf("words: %d\n", st.Words))
		b.WriteString(fmt.Sprintf("span: %s\n", st.Span))
	}
	b.WriteString(fmt.Sprintf("topics: %d\n", len(res.Topics)))
	b.WriteString(fmt.Sprintf("threshold: %.4f\n", res.Threshold))
	b.WriteString(fmt.Sprintf("boundaries: [%s]\n", joinInts(res.Boundaries)))
	b.WriteString(fmt.Sprintf("window_size: %d\n", r.Config.WindowSize))
	b.WriteString(fmt.Sprintf("smoothing_kernel: %d\n", r.Config.SmoothingKernel))
	b.WriteString(fmt.Sprintf("percentile: %g\n", r.Config.Percentile))
	b.WriteString(fmt.Sprintf("min_topic_size: %d\n", r.Config.MinTopicSize))
	b.WriteString("---\n\n")

	// Title
	name := filepath.Base(r.Source)
	if name == "." || name == "" {
		name = "transcript"
	}
	b.WriteString(fmt.Sprintf("# Topics: %s\n\n", name))

	if r.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(strings.TrimSpace(r.Summary))
		b.WriteString("\n\n")
	}

	for i, t := range res.Topics {
		b.WriteString(fmt.Sprintf("## Topic %d\n\n", i+1))
		b.WriteString(fmt.Sprintf("*%s → %s · %d segments*\n\n", t.StartTime(), t.EndTime(), len(t.Segments)))
		for _, s := range t.Segments {
			b.WriteString(fmt.Sprintf("- `%s` %s\n", s.Timestamp, s.Text))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
