// Package logging builds the zerolog logger shared by every podseg command.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Formats accepted by Config.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// FieldComponent tags log lines with the package that emitted them.
const FieldComponent = "component"

// Config controls level and output format.
type Config struct {
	Level   string `toml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format  string `toml:"format" validate:"omitempty,oneof=console json"`
	NoColor bool   `toml:"no_color"`
}

// DefaultConfig logs info and above in console format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatConsole}
}

// New returns a logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w. Unknown levels fall back to
// info.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if strings.ToLower(cfg.Format) != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
			TimeFormat: time.TimeOnly,
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a sub-logger tagged with name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}
