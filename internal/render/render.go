package render

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/suykerbuyk/podseg/internal/archive"
	"github.com/suykerbuyk/podseg/internal/segment"
	"github.com/suykerbuyk/podseg/internal/transcript"
)

// Format selects a report layout.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// ParseFormat maps a flag value to a Format. The empty string is Text.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown or json)", s)
}

// Ext returns the file extension used for reports in this format.
func (f Format) Ext() string {
	switch f {
	case Markdown:
		return ".md"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Report holds everything needed to render one segmentation run.
type Report struct {
	Source   string // transcript path
	Provider string // embedding provider name, e.g. "onnx/all-MiniLM-L6-v2"
	Segments int
	Config   segment.Config
	Result   *segment.Result
	Summary  string // optional LLM summary, markdown and json only

	// Stats describes the whole transcript; nil omits words and span.
	Stats *transcript.Stats
}

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r Report) error {
	switch f {
	case Text, "":
		return WriteText(w, r.Result.Topics)
	case Markdown:
		_, err := io.WriteString(w, MarkdownReport(r))
		return err
	case JSON:
		return WriteJSON(w, r)
	}
	return fmt.Errorf("unknown report format %q", string(f))
}

// OutputPath returns the default report path for a transcript:
// <dir>/<stem>_topics<ext>, next to the input.
func OutputPath(input string, f Format) string {
	return filepath.Join(filepath.Dir(input), archive.Stem(input)+"_topics"+f.Ext())
}
