package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ConfigDir returns the podseg config directory path.
// Uses $XDG_CONFIG_HOME/podseg if set, otherwise ~/.config/podseg.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "podseg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "podseg")
}

const defaultTOML = `# podseg configuration

state_dir = %q

[segment]
window_size = 3
smoothing_kernel = 3     # odd
percentile = 20.0
min_topic_size = 3
min_segments = 3
malformed = "skip"       # skip | fail

[embedding]
provider = "onnx"        # onnx | openai | hashing
model = "all-MiniLM-L6-v2"
model_path = "~/.local/share/podseg/all-MiniLM-L6-v2/model.onnx"
tokenizer_path = "~/.local/share/podseg/all-MiniLM-L6-v2/tokenizer.json"
# onnx_library = "/usr/lib/libonnxruntime.so"
max_batch_tokens = 8192
max_seq_len = 256
base_url = "https://api.openai.com/v1"
api_key_env = "OPENAI_API_KEY"
cache = true
timeout_seconds = 60

[transcription]
backend = "whisper-local" # whisper-local | openai
model = "medium.en"
device = "auto"
python = "python3"
language = "en"
beam_size = 5
vad_filter = true
timeout_seconds = 3600

[audio]
ffmpeg = "ffmpeg"
sample_rate = 16000
channels = 1
noise_reduction_db = 12.0
highpass_hz = 80
normalize = true

[enrichment]
enabled = false
timeout_seconds = 30
provider = "openai"
model = "gpt-4o-mini"
api_key_env = "OPENAI_API_KEY"
base_url = "https://api.openai.com/v1"

[archive]
compress = false

[log]
level = "info"
format = "console"
`

var stateDirLine = regexp.MustCompile(`(?m)^state_dir\s*=.*$`)

// WriteDefault writes a default config.toml keeping state in stateDir.
// When config.toml already exists only its state_dir line is rewritten.
// Returns the config file path and the action taken: "created",
// "updated" or "unchanged".
func WriteDefault(stateDir string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")
	line := fmt.Sprintf("state_dir = %q", CompressHome(stateDir))

	if data, err := os.ReadFile(path); err == nil {
		content := string(data)
		var updated string
		if stateDirLine.MatchString(content) {
			updated = stateDirLine.ReplaceAllLiteralString(content, line)
		} else {
			updated = line + "\n\n" + content
		}
		if updated == content {
			return path, "unchanged", nil
		}
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return "", "", fmt.Errorf("write config: %w", err)
		}
		return path, "updated", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(defaultTOML, CompressHome(stateDir))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
