package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/process"
	"github.com/suykerbuyk/podseg/internal/store"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "podseg check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("podseg check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the config file in use. Always passes; broken TOML
// fails config.Load before we get here.
func CheckConfig(cfg config.Config) Result {
	if cfg.Path == "" {
		cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
		return Result{Name: "config", Status: Pass, Detail: "defaults (" + config.CompressHome(cfgPath) + " not found)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfg.Path)}
}

// CheckBinary checks that binary resolves on PATH. A missing binary is a
// warning because only some commands need it.
func CheckBinary(name, binary, usedBy string) Result {
	path, err := process.LookPath(binary)
	if err != nil {
		return Result{Name: name, Status: Warn, Detail: fmt.Sprintf("%s not found (needed by %s)", binary, usedBy)}
	}
	return Result{Name: name, Status: Pass, Detail: path}
}

// CheckTranscription checks what the configured speech-to-text backend needs.
func CheckTranscription(tcfg config.TranscriptionConfig) Result {
	switch tcfg.Backend {
	case "openai":
		return checkKey("transcribe", tcfg.APIKeyEnv, Warn)
	default:
		r := CheckBinary("transcribe", tcfg.Python, "whisper-local transcription")
		if r.Status == Pass {
			r.Detail = fmt.Sprintf("whisper-local via %s (model %s)", r.Detail, tcfg.Model)
		}
		return r
	}
}

// CheckEmbedding checks that the configured embedding provider can run.
// Missing model files or keys fail because segmentation needs them.
func CheckEmbedding(ecfg config.EmbeddingConfig) []Result {
	switch ecfg.Provider {
	case "hashing":
		dims := ecfg.Dimensions
		if dims <= 0 {
			dims = 512
		}
		return []Result{{Name: "embedding", Status: Pass, Detail: fmt.Sprintf("hashing (%d dims, offline)", dims)}}
	case "openai":
		r := checkKey("embedding", ecfg.APIKeyEnv, Fail)
		if r.Status == Pass {
			r.Detail = ecfg.Model + ", " + r.Detail
		}
		return []Result{r}
	default:
		results := []Result{
			checkFile("model", ecfg.ModelPath),
			checkFile("tokenizer", ecfg.TokenizerPath),
		}
		if ecfg.ONNXLibrary != "" {
			results = append(results, checkFile("onnxruntime", ecfg.ONNXLibrary))
		}
		return results
	}
}

// CheckEnrichment checks enrichment configuration.
func CheckEnrichment(ecfg config.EnrichmentConfig) Result {
	if !ecfg.Enabled {
		return Result{Name: "enrichment", Status: Pass, Detail: "disabled"}
	}
	return checkKey("enrichment", ecfg.APIKeyEnv, Warn)
}

// CheckStateDir checks whether the state directory exists.
func CheckStateDir(stateDir string) Result {
	if info, err := os.Stat(stateDir); err == nil && info.IsDir() {
		return Result{Name: "state", Status: Pass, Detail: config.CompressHome(stateDir)}
	}
	return Result{Name: "state", Status: Warn, Detail: config.CompressHome(stateDir) + " not found (created on first run)"}
}

// CheckHistory opens the history database and reports its contents.
func CheckHistory(ctx context.Context, dbPath string) Result {
	if _, err := os.Stat(dbPath); err != nil {
		return Result{Name: "history", Status: Warn, Detail: filepath.Base(dbPath) + " not found yet"}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	defer st.Close()

	runs, err := st.CountRuns(ctx)
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	cached, err := st.CachedEmbeddings(ctx)
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "history", Status: Pass,
		Detail: fmt.Sprintf("%s (%d runs, %d cached embeddings)", filepath.Base(dbPath), runs, cached)}
}

func checkKey(name, env string, missing Status) Result {
	if env == "" {
		return Result{Name: name, Status: missing, Detail: "api_key_env not configured"}
	}
	if os.Getenv(env) != "" {
		return Result{Name: name, Status: Pass, Detail: env + " set"}
	}
	return Result{Name: name, Status: missing, Detail: env + " not set"}
}

func checkFile(name, path string) Result {
	if path == "" {
		return Result{Name: name, Status: Fail, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Status: Fail, Detail: config.CompressHome(path) + " not found"}
	}
	if info.IsDir() {
		return Result{Name: name, Status: Fail, Detail: config.CompressHome(path) + " is a directory"}
	}
	return Result{Name: name, Status: Pass, Detail: config.CompressHome(path)}
}

// Run executes all checks against the given config and returns a report.
func Run(ctx context.Context, cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig(cfg))
	results = append(results, CheckBinary("ffmpeg", cfg.Audio.FFmpeg, "convert, clean"))
	results = append(results, CheckTranscription(cfg.Transcription))
	results = append(results, CheckEmbedding(cfg.Embedding)...)
	results = append(results, CheckEnrichment(cfg.Enrichment))
	results = append(results, CheckStateDir(cfg.StateDir))
	results = append(results, CheckHistory(ctx, cfg.HistoryDB()))

	return Report{Results: results}
}
