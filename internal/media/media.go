// Package media drives ffmpeg to normalize and clean audio before
// transcription.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/process"
)

// Options mirror the [audio] config section.
type Options struct {
	FFmpeg           string
	SampleRate       int
	Channels         int
	NoiseReductionDB float64
	HighpassHz       int
	Normalize        bool
}

// Processor runs conversion and cleaning passes.
type Processor struct {
	opts   Options
	runner process.Runner
	log    zerolog.Logger
}

// New returns a Processor. A nil runner uses process.Exec.
func New(opts Options, runner process.Runner, log zerolog.Logger) *Processor {
	if runner == nil {
		runner = process.Exec
	}
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	return &Processor{opts: opts, runner: runner, log: log}
}

// ConvertedPath is the default output for Convert: dir/<base>.wav, or next
// to the input when dir is empty.
func ConvertedPath(in, dir string) string {
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, stem(in)+".wav")
}

// CleanedPath is the default output for Clean: <base>_preprocessed.wav.
func CleanedPath(in, dir string) string {
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, stem(in)+"_preprocessed.wav")
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Convert decodes any ffmpeg-readable media into a mono 16 kHz WAV (or the
// configured rate and channel count).
func (p *Processor) Convert(ctx context.Context, in, out string) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", in,
		"-ac", strconv.Itoa(p.opts.Channels), "-ar", strconv.Itoa(p.opts.SampleRate)}
	return p.render(ctx, in, out, args)
}

// Clean applies a highpass filter, FFT denoising and peak normalization in
// one pass after measuring the input's peak level.
func (p *Processor) Clean(ctx context.Context, in, out string) error {
	gain := 0.0
	if p.opts.Normalize {
		peak, err := p.PeakLevel(ctx, in)
		if err != nil {
			return err
		}
		if peak < 0 {
			gain = -peak
		}
		p.log.Debug().Float64("max_volume_db", peak).Float64("gain_db", gain).Msg("measured peak")
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-i", in}
	if chain := p.FilterChain(gain); chain != "" {
		args = append(args, "-af", chain)
	}
	args = append(args, "-ac", strconv.Itoa(p.opts.Channels), "-ar", strconv.Itoa(p.opts.SampleRate))
	return p.render(ctx, in, out, args)
}

// FilterChain builds the -af expression used by Clean.
func (p *Processor) FilterChain(gainDB float64) string {
	var filters []string
	if p.opts.HighpassHz > 0 {
		filters = append(filters, fmt.Sprintf("highpass=f=%d", p.opts.HighpassHz))
	}
	if p.opts.NoiseReductionDB > 0 {
		filters = append(filters, "afftdn=nr="+strconv.FormatFloat(p.opts.NoiseReductionDB, 'f', -1, 64))
	}
	if gainDB != 0 {
		filters = append(filters, fmt.Sprintf("volume=%.2fdB", gainDB))
	}
	return strings.Join(filters, ",")
}

var maxVolumePattern = regexp.MustCompile(`max_volume:\s*(-?[0-9.]+|-inf) dB`)

// PeakLevel runs ffmpeg's volumedetect filter and returns max_volume in dB.
func (p *Processor) PeakLevel(ctx context.Context, in string) (float64, error) {
	res, err := p.runner.Run(ctx, process.Command{
		Binary: p.opts.FFmpeg,
		Args:   []string{"-hide_banner", "-nostats", "-i", in, "-af", "volumedetect", "-vn", "-sn", "-dn", "-f", "null", "-"},
	})
	if err != nil {
		return 0, fmt.Errorf("measure volume: %w", err)
	}
	return ParseMaxVolume(res.Stderr)
}

// ParseMaxVolume extracts max_volume from volumedetect output. Silent input
// (-inf) reports 0 so no gain is applied.
func ParseMaxVolume(out []byte) (float64, error) {
	m := maxVolumePattern.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("volumedetect: max_volume not found in ffmpeg output")
	}
	if string(m[1]) == "-inf" {
		return 0, nil
	}
	return strconv.ParseFloat(string(m[1]), 64)
}

// render runs ffmpeg with output into a temp file beside out and renames it
// into place once ffmpeg succeeds.
func (p *Processor) render(ctx context.Context, in, out string, args []string) error {
	if err := sameFile(in, out); err != nil {
		return err
	}
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".podseg-*"+filepath.Ext(out))
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := process.Command{Binary: p.opts.FFmpeg, Args: append(args, "-y", tmpPath)}
	p.log.Debug().Str("cmd", cmd.String()).Msg("running ffmpeg")
	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return fmt.Errorf("install output: %w", err)
	}
	p.log.Info().Str("output", out).Dur("took", res.Duration).Msg("audio written")
	return nil
}

func sameFile(in, out string) error {
	a, err1 := filepath.Abs(in)
	b, err2 := filepath.Abs(out)
	if err1 == nil && err2 == nil && a == b {
		return fmt.Errorf("output %s would overwrite the input", out)
	}
	return nil
}
