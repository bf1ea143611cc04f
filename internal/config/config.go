package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/suykerbuyk/podseg/internal/logging"
	"github.com/suykerbuyk/podseg/internal/segment"
	"github.com/suykerbuyk/podseg/internal/transcript"
)

// Config holds all podseg configuration.
type Config struct {
	StateDir string `toml:"state_dir" validate:"required"`

	Segment       SegmentConfig       `toml:"segment"`
	Embedding     EmbeddingConfig     `toml:"embedding"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Audio         AudioConfig         `toml:"audio"`
	Enrichment    EnrichmentConfig    `toml:"enrichment"`
	Archive       ArchiveConfig       `toml:"archive"`
	Log           logging.Config      `toml:"log"`

	// Path is the file the config was read from, empty when running on
	// defaults.
	Path string `toml:"-"`
}

type SegmentConfig struct {
	WindowSize      int     `toml:"window_size" validate:"min=1"`
	SmoothingKernel int     `toml:"smoothing_kernel" validate:"min=1,odd"`
	Percentile      float64 `toml:"percentile" validate:"gte=0,lte=100"`
	MinTopicSize    int     `toml:"min_topic_size" validate:"min=1"`
	MinSegments     int     `toml:"min_segments" validate:"min=2"`
	Malformed       string  `toml:"malformed" validate:"oneof=skip fail"`
}

type EmbeddingConfig struct {
	Provider       string `toml:"provider" validate:"oneof=onnx openai hashing"`
	Model          string `toml:"model" validate:"required"`
	ModelPath      string `toml:"model_path"`
	TokenizerPath  string `toml:"tokenizer_path"`
	ONNXLibrary    string `toml:"onnx_library"`
	MaxBatchTokens int    `toml:"max_batch_tokens" validate:"min=1"`
	MaxSeqLen      int    `toml:"max_seq_len" validate:"min=8"`
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	APIKeyEnv      string `toml:"api_key_env"`
	Dimensions     int    `toml:"dimensions" validate:"min=0"`
	Cache          bool   `toml:"cache"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=1"`
}

type TranscriptionConfig struct {
	Backend        string   `toml:"backend" validate:"oneof=whisper-local openai"`
	Model          string   `toml:"model" validate:"required"`
	Device         string   `toml:"device" validate:"oneof=auto cpu cuda"`
	ComputeType    string   `toml:"compute_type"`
	Python         string   `toml:"python"`
	BaseURL        string   `toml:"base_url" validate:"omitempty,url"`
	APIKeyEnv      string   `toml:"api_key_env"`
	Language       string   `toml:"language"`
	BeamSize       int      `toml:"beam_size" validate:"min=1"`
	VADFilter      bool     `toml:"vad_filter"`
	Fillers        []string `toml:"fillers"`
	TimeoutSeconds int      `toml:"timeout_seconds" validate:"min=1"`
}

type AudioConfig struct {
	FFmpeg           string  `toml:"ffmpeg" validate:"required"`
	SampleRate       int     `toml:"sample_rate" validate:"min=8000"`
	Channels         int     `toml:"channels" validate:"min=1,max=2"`
	NoiseReductionDB float64 `toml:"noise_reduction_db" validate:"gte=0,lte=97"`
	HighpassHz       int     `toml:"highpass_hz" validate:"min=0"`
	Normalize        bool    `toml:"normalize"`
	WorkDir          string  `toml:"work_dir"`
}

type EnrichmentConfig struct {
	Enabled        bool   `toml:"enabled"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=1"`
	Provider       string `toml:"provider" validate:"oneof=openai"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
}

type ArchiveConfig struct {
	Compress bool   `toml:"compress"`
	Dir      string `toml:"dir"`
}

// DefaultFillers are removed from transcribed speech before it is split
// into sentences.
var DefaultFillers = []string{
	"uh", "um", "you know", "like", "i mean",
	"sort of", "kind of", "basically", "actually",
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StateDir: "~/.local/state/podseg",
		Segment: SegmentConfig{
			WindowSize:      3,
			SmoothingKernel: 3,
			Percentile:      20,
			MinTopicSize:    3,
			MinSegments:     3,
			Malformed:       "skip",
		},
		Embedding: EmbeddingConfig{
			Provider:       "onnx",
			Model:          "all-MiniLM-L6-v2",
			ModelPath:      "~/.local/share/podseg/all-MiniLM-L6-v2/model.onnx",
			TokenizerPath:  "~/.local/share/podseg/all-MiniLM-L6-v2/tokenizer.json",
			MaxBatchTokens: 8192,
			MaxSeqLen:      256,
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			Cache:          true,
			TimeoutSeconds: 60,
		},
		Transcription: TranscriptionConfig{
			Backend:        "whisper-local",
			Model:          "medium.en",
			Device:         "auto",
			Python:         "python3",
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			Language:       "en",
			BeamSize:       5,
			VADFilter:      true,
			Fillers:        append([]string(nil), DefaultFillers...),
			TimeoutSeconds: 3600,
		},
		Audio: AudioConfig{
			FFmpeg:           "ffmpeg",
			SampleRate:       16000,
			Channels:         1,
			NoiseReductionDB: 12,
			HighpassHz:       80,
			Normalize:        true,
		},
		Enrichment: EnrichmentConfig{
			Enabled:        false,
			TimeoutSeconds: 30,
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			BaseURL:        "https://api.openai.com/v1",
		},
		Archive: ArchiveConfig{
			Compress: false,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load loads .env files, then reads config from the standard path, falling
// back to defaults. The result is validated.
func Load() (Config, error) {
	LoadEnv()
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFrom(p)
		}
	}
	cfg := DefaultConfig()
	cfg.expand()
	return cfg, Validate(cfg)
}

// LoadFrom reads config from an explicit path on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.expand()
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) expand() {
	c.StateDir = expandHome(c.StateDir)
	c.Embedding.ModelPath = expandHome(c.Embedding.ModelPath)
	c.Embedding.TokenizerPath = expandHome(c.Embedding.TokenizerPath)
	c.Embedding.ONNXLibrary = expandHome(c.Embedding.ONNXLibrary)
	c.Audio.WorkDir = expandHome(c.Audio.WorkDir)
	c.Archive.Dir = expandHome(c.Archive.Dir)
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "podseg", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "podseg", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Options converts the [segment] section into segmenter settings.
func (s SegmentConfig) Options() segment.Config {
	return segment.Config{
		WindowSize:      s.WindowSize,
		SmoothingKernel: s.SmoothingKernel,
		Percentile:      s.Percentile,
		MinTopicSize:    s.MinTopicSize,
		MinSegments:     s.MinSegments,
	}
}

// Policy returns the malformed-line policy named by the config.
func (s SegmentConfig) Policy() (transcript.MalformedPolicy, error) {
	return transcript.ParsePolicy(s.Malformed)
}

// APIKey reads the embedding API key from the configured variable.
func (e EmbeddingConfig) APIKey() string { return getenv(e.APIKeyEnv) }

// Timeout is the per-request timeout for remote embedding calls.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// APIKey reads the transcription API key from the configured variable.
func (t TranscriptionConfig) APIKey() string { return getenv(t.APIKeyEnv) }

func (t TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// APIKey reads the enrichment API key from the configured variable.
func (e EnrichmentConfig) APIKey() string { return getenv(e.APIKeyEnv) }

func (e EnrichmentConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// HistoryDB is the sqlite file holding run history and the embedding cache.
func (c Config) HistoryDB() string {
	return filepath.Join(c.StateDir, "podseg.db")
}

// ArchiveDir is where compressed transcripts are kept.
func (c Config) ArchiveDir() string {
	if c.Archive.Dir != "" {
		return c.Archive.Dir
	}
	return filepath.Join(c.StateDir, "archive")
}
