// Package sanitize cleans transcribed speech: filler-word removal for
// transcripts and text normalization for scoring.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Fillers removes a fixed set of filler words and phrases.
type Fillers struct {
	pattern *regexp.Regexp
}

// NewFillers compiles words into a case-insensitive, word-bounded matcher.
// Phrases are matched in the order given. An empty list removes nothing.
func NewFillers(words []string) *Fillers {
	var alts []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			alts = append(alts, regexp.QuoteMeta(w))
		}
	}
	if len(alts) == 0 {
		return &Fillers{}
	}
	return &Fillers{pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)}
}

// Clean removes fillers, collapses whitespace and trims.
func (f *Fillers) Clean(text string) string {
	if f.pattern != nil {
		text = f.pattern.ReplaceAllString(text, "")
	}
	return CollapseSpace(text)
}

// CollapseSpace replaces runs of whitespace with one space and trims.
func CollapseSpace(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Normalize lowercases text, strips punctuation and collapses whitespace.
func Normalize(text string) string {
	return CollapseSpace(punctuation.ReplaceAllString(strings.ToLower(text), ""))
}
