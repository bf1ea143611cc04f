package help

import "strings"

// Version is the podseg release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "-o <path>" or "--format <f>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "transcript" or "dir"
	Desc     string
	Optional bool
}

// Command describes a podseg subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string // "segment", "wer", etc; "" for top-level
	Synopsis    string // one-line description (lowercase, for --help header)
	Brief       string // short description for usage table (capitalized)
	Usage       string // full usage line, e.g. "podseg wer <reference> <hypothesis>"
	TableUsage  string // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "podseg(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "podseg" for top-level, "podseg-<name>" for subs.
func (c Command) ManName() string {
	if c.Name == "" {
		return "podseg"
	}
	return "podseg-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level podseg command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "podcast transcript pipeline and topic segmenter",
}

var CmdInit = Command{
	Name:       "init",
	Synopsis:   "write a default config file",
	Brief:      "Write a default config file",
	Usage:      "podseg init [--state-dir <dir>]",
	TableUsage: "podseg init",
	Flags: []Flag{
		{Name: "--state-dir <dir>", Desc: "State directory for history and cache (default: ~/.local/state/podseg)"},
	},
	Description: `Writes a commented default config to ~/.config/podseg/config.toml
(or $XDG_CONFIG_HOME/podseg/config.toml). An existing file is kept;
only its state_dir line is updated when --state-dir is given.`,
	Examples: []string{
		"podseg init",
		"podseg init --state-dir ~/podcasts/.podseg",
	},
	SeeAlso: []string{"podseg(1)", "podseg-check(1)"},
}

var CmdConvert = Command{
	Name:       "convert",
	Synopsis:   "convert media to a mono 16 kHz waveform",
	Brief:      "Convert media to mono 16 kHz WAV",
	Usage:      "podseg convert <media> [-o <out.wav>]",
	TableUsage: "podseg convert <media>",
	Args: []Arg{
		{Name: "media", Desc: "Any audio or video file ffmpeg can read"},
	},
	Flags: []Flag{
		{Name: "-o <out.wav>", Desc: "Output path (default: <stem>.wav in audio.work_dir or next to the input)"},
	},
	Description: `Runs ffmpeg to downmix to audio.channels and resample to
audio.sample_rate. The output is written to a temporary file and
renamed into place.`,
	Examples: []string{
		"podseg convert episode.mp3",
		"podseg convert interview.mp4 -o interview.wav",
	},
	SeeAlso: []string{"podseg(1)", "podseg-clean(1)"},
}

var CmdClean = Command{
	Name:       "clean",
	Synopsis:   "denoise and normalize a waveform",
	Brief:      "Denoise and peak-normalize audio",
	Usage:      "podseg clean <in.wav> [-o <out.wav>]",
	TableUsage: "podseg clean <in.wav>",
	Args: []Arg{
		{Name: "in.wav", Desc: "Input audio"},
	},
	Flags: []Flag{
		{Name: "-o <out.wav>", Desc: "Output path (default: <stem>_preprocessed.wav)"},
	},
	Description: `Measures the peak level with ffmpeg volumedetect, then applies a
highpass filter, FFT denoising (afftdn) and the gain that brings the
peak to 0 dBFS. Filter strengths come from the [audio] config section.`,
	Examples: []string{
		"podseg clean episode.wav",
	},
	SeeAlso: []string{"podseg(1)", "podseg-convert(1)", "podseg-transcribe(1)"},
}

var CmdTranscribe = Command{
	Name:       "transcribe",
	Synopsis:   "transcribe audio to timestamped text",
	Brief:      "Transcribe audio to [HH:MM:SS] lines",
	Usage:      "podseg transcribe <audio> [-o <out.txt>] [--backend <name>] [--model <name>]",
	TableUsage: "podseg transcribe <audio>",
	Args: []Arg{
		{Name: "audio", Desc: "Audio file to transcribe"},
	},
	Flags: []Flag{
		{Name: "-o <out.txt>", Desc: "Output path (default: <stem>.txt next to the input)"},
		{Name: "--backend <name>", Desc: "whisper-local or openai (default: transcription.backend)"},
		{Name: "--model <name>", Desc: "Override the speech model"},
	},
	Description: `Runs speech-to-text, removes filler words, splits each segment into
sentences and writes one "[HH:MM:SS] sentence" line per sentence,
separated by blank lines. The timestamp is the segment start.

The whisper-local backend runs an embedded faster-whisper helper with
transcription.python; the openai backend posts to an
OpenAI-compatible /audio/transcriptions endpoint.`,
	Examples: []string{
		"podseg transcribe episode_preprocessed.wav",
		"podseg transcribe episode.wav --backend openai --model whisper-1",
	},
	SeeAlso: []string{"podseg(1)", "podseg-segment(1)", "podseg-wer(1)"},
}

var CmdSegment = Command{
	Name:       "segment",
	Synopsis:   "split a transcript into topics",
	Brief:      "Split transcripts into topics",
	Usage:      "podseg segment <transcript|dir> [-o <report>] [--format <f>] [options]",
	TableUsage: "podseg segment <transcript|dir>",
	Args: []Arg{
		{Name: "transcript|dir", Desc: "A transcript (.txt or .txt.zst) or a directory of them"},
	},
	Flags: []Flag{
		{Name: "-o <report>", Desc: "Report path (default: <stem>_topics.<ext> next to the input)"},
		{Name: "--format <f>", Desc: "text, markdown or json (default: text)"},
		{Name: "--window <n>", Desc: "Segments per embedding window"},
		{Name: "--kernel <k>", Desc: "Smoothing kernel size (odd)"},
		{Name: "--percentile <p>", Desc: "Boundary threshold percentile"},
		{Name: "--min-topic <n>", Desc: "Minimum segments between boundaries"},
		{Name: "--min-segments <n>", Desc: "Minimum transcript length"},
		{Name: "--strict", Desc: "Fail on lines without a [HH:MM:SS] prefix"},
		{Name: "--provider <p>", Desc: "Embedding provider: onnx, openai or hashing"},
		{Name: "--no-cache", Desc: "Bypass the embedding cache"},
		{Name: "--archive", Desc: "Compress the transcript into the archive afterwards"},
	},
	Description: `Embeds a sliding window around each segment, smooths the cosine
similarity between neighbouring windows and places a topic boundary
wherever the smoothed similarity drops below the chosen percentile,
keeping boundaries at least --min-topic segments apart.

The report is written only when the whole run succeeds. Each run is
recorded in the history database.`,
	Examples: []string{
		"podseg segment episode.txt",
		"podseg segment episode.txt --format markdown -o notes/episode.md",
		"podseg segment transcripts/ --provider hashing",
	},
	SeeAlso: []string{"podseg(1)", "podseg-history(1)", "podseg-watch(1)"},
}

var CmdWER = Command{
	Name:       "wer",
	Synopsis:   "score a transcript against a reference",
	Brief:      "Compute word error rate",
	Usage:      "podseg wer <reference> <hypothesis> [--keep-timestamps]",
	TableUsage: "podseg wer <ref> <hyp>",
	Args: []Arg{
		{Name: "reference", Desc: "Ground-truth text"},
		{Name: "hypothesis", Desc: "Transcribed text"},
	},
	Flags: []Flag{
		{Name: "--keep-timestamps", Desc: "Score [HH:MM:SS] markers as words"},
	},
	Description: `Lowercases both texts, strips punctuation and collapses whitespace,
then aligns them word by word. Prints the word error rate and the
substitution, deletion, insertion and hit counts.`,
	Examples: []string{
		"podseg wer reference.txt episode.txt",
	},
	SeeAlso: []string{"podseg(1)", "podseg-transcribe(1)"},
}

var CmdSummarize = Command{
	Name:       "summarize",
	Synopsis:   "summarize a transcript with a chat model",
	Brief:      "Summarize a transcript with an LLM",
	Usage:      "podseg summarize <transcript> [-o <out.md>]",
	TableUsage: "podseg summarize <transcript>",
	Args: []Arg{
		{Name: "transcript", Desc: "Transcript to summarize"},
	},
	Flags: []Flag{
		{Name: "-o <out.md>", Desc: "Write the summary to a file instead of stdout"},
	},
	Description: `Sends the transcript to the OpenAI-compatible chat endpoint in the
[enrichment] section and prints a bullet-point summary. Fails when the
API key variable is not set.`,
	Examples: []string{
		"OPENAI_API_KEY=sk-... podseg summarize episode.txt",
	},
	SeeAlso: []string{"podseg(1)", "podseg-segment(1)"},
}

var CmdWatch = Command{
	Name:       "watch",
	Synopsis:   "segment transcripts as they appear",
	Brief:      "Watch a directory and segment new transcripts",
	Usage:      "podseg watch <dir> [--format <f>] [--provider <p>]",
	TableUsage: "podseg watch <dir>",
	Args: []Arg{
		{Name: "dir", Desc: "Directory to watch"},
	},
	Flags: []Flag{
		{Name: "--format <f>", Desc: "Report format (default: text)"},
		{Name: "--provider <p>", Desc: "Embedding provider override"},
	},
	Description: `Segments every transcript created or modified in dir once it has
been quiet for 500 ms, writing <stem>_topics.txt next to it. Failures
are logged and the watch continues. Stop with Ctrl-C.`,
	Examples: []string{
		"podseg watch ~/podcasts/incoming",
	},
	SeeAlso: []string{"podseg(1)", "podseg-segment(1)"},
}

var CmdHistory = Command{
	Name:       "history",
	Synopsis:   "show recorded segmentation runs",
	Brief:      "Show recent runs and totals",
	Usage:      "podseg history [-n <count>]",
	TableUsage: "podseg history [-n N]",
	Flags: []Flag{
		{Name: "-n <count>", Desc: "Number of recent runs to list (default: 10)"},
	},
	Description: `Reads the history database in state_dir and prints totals, per-provider
and per-month counts, and the most recent runs.`,
	SeeAlso: []string{"podseg(1)", "podseg-segment(1)"},
}

var CmdArchive = Command{
	Name:       "archive",
	Synopsis:   "compress transcripts into the archive",
	Brief:      "Compress transcripts with zstd",
	Usage:      "podseg archive <file>... [--dir <dir>]",
	TableUsage: "podseg archive <file>...",
	Args: []Arg{
		{Name: "file", Desc: "Transcript or report to compress"},
	},
	Flags: []Flag{
		{Name: "--dir <dir>", Desc: "Archive directory (default: archive.dir or <state_dir>/archive)"},
	},
	Description: `Writes <name>.zst into the archive directory. Files already archived
are skipped. Every command that reads transcripts accepts .zst files
directly.`,
	SeeAlso: []string{"podseg(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config and external dependencies",
	Brief:    "Validate config and dependencies",
	Usage:    "podseg check",
	Description: `Checks the config file, ffmpeg, the transcription backend, the
embedding model files or API key, enrichment, the state directory and
the history database. Exits 1 if any check fails.`,
	SeeAlso: []string{"podseg(1)", "podseg-init(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "podseg version",
	SeeAlso:  []string{"podseg(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdInit,
	CmdConvert,
	CmdClean,
	CmdTranscribe,
	CmdSegment,
	CmdWER,
	CmdSummarize,
	CmdWatch,
	CmdHistory,
	CmdArchive,
	CmdCheck,
	CmdVersion,
}

// Lookup returns the subcommand with the given name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
