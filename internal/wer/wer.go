// Package wer scores a transcription against a reference with word error
// rate.
package wer

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/suykerbuyk/podseg/internal/archive"
	"github.com/suykerbuyk/podseg/internal/sanitize"
)

// ErrEmptyReference is returned when the reference has no words but the
// hypothesis does; the rate is undefined.
var ErrEmptyReference = errors.New("reference has no words: word error rate is undefined")

var timestampPrefix = regexp.MustCompile(`(?m)^\s*\[\d{2}:\d{2}:\d{2}\]`)

// Result is a word-level alignment summary.
type Result struct {
	WER           float64
	Substitutions int
	Deletions     int
	Insertions    int
	Hits          int
	RefWords      int
	HypWords      int
}

// Errors is the total edit count.
func (r Result) Errors() int { return r.Substitutions + r.Deletions + r.Insertions }

// Compute normalizes both texts and aligns them word by word.
func Compute(reference, hypothesis string) (Result, error) {
	return Align(strings.Fields(sanitize.Normalize(reference)), strings.Fields(sanitize.Normalize(hypothesis)))
}

// Align computes the minimum-edit alignment of hyp against ref.
// An empty reference scores 0 against an empty hypothesis.
func Align(ref, hyp []string) (Result, error) {
	r := Result{RefWords: len(ref), HypWords: len(hyp)}
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return r, nil
		}
		return r, ErrEmptyReference
	}

	// d[i][j] is the edit distance between ref[:i] and hyp[:j].
	n, m := len(ref), len(hyp)
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j-1]+cost, d[i-1][j]+1, d[i][j-1]+1)
		}
	}

	// Walk back, preferring match/substitution, then deletion, then insertion.
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && d[i][j] == d[i-1][j-1]:
			r.Hits++
			i, j = i-1, j-1
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			r.Substitutions++
			i, j = i-1, j-1
		case i > 0 && d[i][j] == d[i-1][j]+1:
			r.Deletions++
			i--
		default:
			r.Insertions++
			j--
		}
	}

	r.WER = float64(r.Errors()) / float64(n)
	return r, nil
}

// ReadText loads a text file (plain or .zst). With stripTimestamps, leading
// [HH:MM:SS] markers are removed so transcripts can be scored directly.
func ReadText(path string, stripTimestamps bool) (string, error) {
	rc, err := archive.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	if stripTimestamps {
		text = timestampPrefix.ReplaceAllString(text, "")
	}
	return text, nil
}

// CompareFiles scores the hypothesis file against the reference file.
func CompareFiles(referencePath, hypothesisPath string, stripTimestamps bool) (Result, error) {
	ref, err := ReadText(referencePath, stripTimestamps)
	if err != nil {
		return Result{}, err
	}
	hyp, err := ReadText(hypothesisPath, stripTimestamps)
	if err != nil {
		return Result{}, err
	}
	return Compute(ref, hyp)
}

// Format writes the score in the report layout.
func Format(w io.Writer, r Result) error {
	_, err := fmt.Fprintf(w,
		"WER: %.4f (%.2f%%)\n\nSubstitutions : %d\nDeletions     : %d\nInsertions    : %d\nCorrect words : %d\n",
		r.WER, r.WER*100, r.Substitutions, r.Deletions, r.Insertions, r.Hits)
	return err
}
