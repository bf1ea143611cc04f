// Package transcribe turns audio into timestamped transcript files using a
// local faster-whisper helper or an OpenAI-compatible speech endpoint.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/fsutil"
	"github.com/suykerbuyk/podseg/internal/httpx"
	"github.com/suykerbuyk/podseg/internal/process"
	"github.com/suykerbuyk/podseg/internal/sanitize"
	"github.com/suykerbuyk/podseg/internal/transcript"
)

var (
	// ErrNoSegments means recognition produced no usable sentences.
	ErrNoSegments = errors.New("transcription produced no text")
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown transcription backend")
)

// Segment is a span of recognized speech, times in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is what a backend recognized in one file.
type Result struct {
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Backend recognizes speech in an audio file.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// New builds the backend named by cfg.Backend.
func New(cfg config.TranscriptionConfig, runner process.Runner, log zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "whisper-local":
		return NewWhisper(WhisperOptions{
			Python:      cfg.Python,
			Model:       cfg.Model,
			Device:      cfg.Device,
			ComputeType: cfg.ComputeType,
			Language:    cfg.Language,
			BeamSize:    cfg.BeamSize,
			VADFilter:   cfg.VADFilter,
			Timeout:     cfg.Timeout(),
		}, runner, log), nil
	case "openai":
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("transcription backend openai: %s is not set", cfg.APIKeyEnv)
		}
		return NewOpenAI(httpx.New(cfg.Timeout(), log), cfg.BaseURL, key, cfg.Model, cfg.Language), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// OutputPath is the default transcript path for an audio file: <stem>.txt
// beside it.
func OutputPath(audioPath string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(filepath.Dir(audioPath), strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}

// Lines cleans each recognized segment and splits it into sentences, each
// stamped with its segment's start time.
func Lines(res *Result, fillers *sanitize.Fillers) []transcript.Segment {
	var out []transcript.Segment
	for _, seg := range res.Segments {
		ts := transcript.FormatTimestamp(seg.Start)
		for _, sentence := range transcript.SplitSentences(fillers.Clean(seg.Text)) {
			out = append(out, transcript.Segment{Timestamp: ts, Text: sentence})
		}
	}
	return out
}

// WriteFile renders res as a transcript at path and returns the number of
// lines written. Nothing is written when no lines survive cleaning.
func WriteFile(path string, res *Result, fillers *sanitize.Fillers) (int, error) {
	lines := Lines(res, fillers)
	if len(lines) == 0 {
		return 0, ErrNoSegments
	}
	err := fsutil.Write(path, 0o644, func(w io.Writer) error {
		return transcript.Write(w, lines)
	})
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}
