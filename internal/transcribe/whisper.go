package transcribe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/process"
)

//go:embed assets/faster_whisper.py
var helperScript []byte

// WhisperOptions configure the faster-whisper helper.
type WhisperOptions struct {
	Python      string
	Model       string
	Device      string
	ComputeType string
	Language    string
	BeamSize    int
	VADFilter   bool
	Timeout     time.Duration
}

// Whisper runs faster-whisper through a Python helper fed on stdin.
type Whisper struct {
	opts   WhisperOptions
	runner process.Runner
	log    zerolog.Logger
}

// NewWhisper returns a local backend. A nil runner uses process.Exec.
func NewWhisper(opts WhisperOptions, runner process.Runner, log zerolog.Logger) *Whisper {
	if runner == nil {
		runner = process.Exec
	}
	if opts.Python == "" {
		opts.Python = "python3"
	}
	return &Whisper{opts: opts, runner: runner, log: log}
}

func (w *Whisper) Name() string { return "whisper-local" }

// Args returns the helper's command line for audioPath.
func (w *Whisper) Args(audioPath string) []string {
	args := []string{"-", "--model", w.opts.Model}
	if w.opts.Device != "" {
		args = append(args, "--device", w.opts.Device)
	}
	if w.opts.ComputeType != "" {
		args = append(args, "--compute-type", w.opts.ComputeType)
	}
	if w.opts.BeamSize > 0 {
		args = append(args, "--beam-size", strconv.Itoa(w.opts.BeamSize))
	}
	if w.opts.Language != "" {
		args = append(args, "--language", w.opts.Language)
	}
	if w.opts.VADFilter {
		args = append(args, "--vad")
	}
	return append(args, audioPath)
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	w.log.Info().Str("model", w.opts.Model).Str("audio", audioPath).Msg("running faster-whisper")
	res, err := w.runner.Run(ctx, process.Command{
		Binary: w.opts.Python,
		Args:   w.Args(audioPath),
		Stdin:  bytes.NewReader(helperScript),
	})
	if err != nil {
		return nil, fmt.Errorf("faster-whisper: %w", err)
	}

	var out Result
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return nil, fmt.Errorf("parse faster-whisper output: %w", err)
	}
	w.log.Debug().Int("segments", len(out.Segments)).Float64("duration", out.Duration).Msg("recognized")
	return &out, nil
}
