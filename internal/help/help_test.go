package help

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatTerminal_Version(t *testing.T) {
	expected := "podseg version \u2014 print version\n" +
		"\n" +
		"Usage: podseg version\n"
	if got := FormatTerminal(CmdVersion); got != expected {
		t.Errorf("mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
			quote(expected), quote(got), diff(expected, got))
	}
}

func TestFormatTerminal_WER(t *testing.T) {
	expected := "podseg wer \u2014 score a transcript against a reference\n" +
		"\n" +
		"Usage: podseg wer <reference> <hypothesis> [--keep-timestamps]\n" +
		"\n" +
		"Arguments:\n" +
		"  reference" + strings.Repeat(" ", 11) + "Ground-truth text\n" +
		"  hypothesis" + strings.Repeat(" ", 10) + "Transcribed text\n" +
		"\n" +
		"Flags:\n" +
		"  --keep-timestamps   Score [HH:MM:SS] markers as words\n" +
		"\n" +
		"Lowercases both texts, strips punctuation and collapses whitespace,\n" +
		"then aligns them word by word. Prints the word error rate and the\n" +
		"substitution, deletion, insertion and hit counts.\n" +
		"\n" +
		"Examples:\n" +
		"  podseg wer reference.txt episode.txt\n"
	if got := FormatTerminal(CmdWER); got != expected {
		t.Errorf("mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
			quote(expected), quote(got), diff(expected, got))
	}
}

func TestFormatTerminal_AllCommands(t *testing.T) {
	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatTerminal(cmd)
			prefix := fmt.Sprintf("podseg %s \u2014 %s\n\nUsage: %s\n", cmd.Name, cmd.Synopsis, cmd.Usage)
			if !strings.HasPrefix(out, prefix) {
				t.Errorf("header mismatch.\nwant prefix: %q\ngot:         %q", prefix, out[:min(len(out), len(prefix)+20)])
			}
			if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
				t.Errorf("output should end with exactly one newline: %q", out[max(0, len(out)-20):])
			}
			// One line per flag, each ending in its description.
			for _, f := range cmd.Flags {
				found := false
				for _, line := range strings.Split(out, "\n") {
					if strings.HasPrefix(line, "  "+f.Name+" ") && strings.HasSuffix(line, f.Desc) {
						found = true
					}
				}
				if !found {
					t.Errorf("flag %q not on its own line:\n%s", f.Name, out)
				}
			}
			if cmd.Description != "" && !strings.Contains(out, cmd.Description) {
				t.Error("missing description")
			}
		})
	}
}

func TestFormatTerminal_FlagColumnsAlign(t *testing.T) {
	out := FormatTerminal(CmdSegment)
	col := -1
	for _, line := range strings.Split(out, "\n") {
		for _, f := range CmdSegment.Flags {
			if strings.HasPrefix(line, "  "+f.Name+" ") {
				c := strings.Index(line, f.Desc)
				if col == -1 {
					col = c
				} else if c != col {
					t.Errorf("flag %q description at column %d, want %d", f.Name, c, col)
				}
			}
		}
	}
	if col == -1 {
		t.Fatal("no flag lines found")
	}
}

func TestFormatUsage(t *testing.T) {
	expected := fmt.Sprintf("podseg v%s \u2014 podcast transcript pipeline and topic segmenter\n", Version) +
		"\n" +
		"Usage:\n" +
		"  podseg init                       Write a default config file\n" +
		"  podseg convert <media>            Convert media to mono 16 kHz WAV\n" +
		"  podseg clean <in.wav>             Denoise and peak-normalize audio\n" +
		"  podseg transcribe <audio>         Transcribe audio to [HH:MM:SS] lines\n" +
		"  podseg segment <transcript|dir>   Split transcripts into topics\n" +
		"  podseg wer <ref> <hyp>            Compute word error rate\n" +
		"  podseg summarize <transcript>     Summarize a transcript with an LLM\n" +
		"  podseg watch <dir>                Watch a directory and segment new transcripts\n" +
		"  podseg history [-n N]             Show recent runs and totals\n" +
		"  podseg archive <file>...          Compress transcripts with zstd\n" +
		"  podseg check                      Validate config and dependencies\n" +
		"  podseg version                    Print version\n" +
		"  podseg help [command]             Show help\n" +
		"\n" +
		"Pipeline:\n" +
		"  podseg convert ep.mp3 && podseg clean ep.wav\n" +
		"  podseg transcribe ep_preprocessed.wav -o ep.txt && podseg segment ep.txt\n" +
		"\n" +
		"Configuration: ~/.config/podseg/config.toml (API keys may live in ~/.config/podseg/.env)\n"

	got := FormatUsage(TopLevel, Subcommands)
	if got != expected {
		t.Errorf("FormatUsage mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
			quote(expected), quote(got), diff(expected, got))
	}
}

func TestRegistryCompleteness(t *testing.T) {
	expectedNames := []string{
		"init", "convert", "clean", "transcribe", "segment", "wer",
		"summarize", "watch", "history", "archive", "check", "version",
	}
	if len(Subcommands) != len(expectedNames) {
		t.Fatalf("expected %d subcommands, got %d", len(expectedNames), len(Subcommands))
	}
	for i, name := range expectedNames {
		if Subcommands[i].Name != name {
			t.Errorf("Subcommands[%d].Name = %q, want %q", i, Subcommands[i].Name, name)
		}
		if Subcommands[i].Synopsis == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Synopsis", i, name)
		}
		if Subcommands[i].Usage == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Usage", i, name)
		}
		if Subcommands[i].Brief == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Brief", i, name)
		}
		if !strings.HasPrefix(Subcommands[i].Usage, "podseg "+name) {
			t.Errorf("Subcommands[%d] usage %q does not start with the command", i, Subcommands[i].Usage)
		}
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("segment")
	if !ok || c.Name != "segment" {
		t.Errorf("Lookup(segment) = %v, %v", c.Name, ok)
	}
	if _, ok := Lookup("hook"); ok {
		t.Error("Lookup(hook) should fail")
	}
}

func TestManName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "podseg"},
		{"segment", "podseg-segment"},
		{"wer", "podseg-wer"},
		{"two words", "podseg-two-words"},
	}
	for _, tt := range tests {
		c := Command{Name: tt.name}
		if got := c.ManName(); got != tt.want {
			t.Errorf("Command{Name: %q}.ManName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`simple text`, `simple text`},
		{`back\slash`, `back\\slash`},
		{`.leading dot`, `\&.leading dot`},
		{"line1\n.line2", "line1\n\\&.line2"},
		{`--flag`, `\-\-flag`},
		{`a-b`, `a\-b`},
		{`no special`, `no special`},
		{`.config/podseg/.env`, `\&.config/podseg/.env`},
	}
	for _, tt := range tests {
		got := escapeRoff(tt.input)
		if got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRoffStructure(t *testing.T) {
	fixedDate := "2026-02-27"

	// Test each subcommand has required sections
	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			required := []string{".TH", ".SH NAME", ".SH SYNOPSIS"}
			for _, section := range required {
				if !strings.Contains(out, section) {
					t.Errorf("FormatRoff(%q) missing required section %q", cmd.Name, section)
				}
			}

			// Verify .TH has correct name
			expectedTH := strings.ToUpper(cmd.ManName())
			if !strings.Contains(out, ".TH "+expectedTH+" 1 \""+fixedDate+"\"") {
				t.Errorf("FormatRoff(%q) .TH should contain %q", cmd.Name, expectedTH)
			}

			// Optional sections appear when data present
			if cmd.Description != "" && !strings.Contains(out, ".SH DESCRIPTION") {
				t.Errorf("FormatRoff(%q) has Description but missing .SH DESCRIPTION", cmd.Name)
			}
			if (len(cmd.Args) > 0 || len(cmd.Flags) > 0) && !strings.Contains(out, ".SH OPTIONS") {
				t.Errorf("FormatRoff(%q) has Args/Flags but missing .SH OPTIONS", cmd.Name)
			}
			if len(cmd.Examples) > 0 && !strings.Contains(out, ".SH EXAMPLES") {
				t.Errorf("FormatRoff(%q) has Examples but missing .SH EXAMPLES", cmd.Name)
			}
			if len(cmd.SeeAlso) > 0 && !strings.Contains(out, ".SH SEE ALSO") {
				t.Errorf("FormatRoff(%q) has SeeAlso but missing .SH SEE ALSO", cmd.Name)
			}
		})
	}
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	fixedDate := "2026-02-27"
	out := FormatRoffTopLevel(TopLevel, Subcommands, fixedDate)

	required := []string{
		".TH PODSEG 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH CONFIGURATION",
		".SH SEE ALSO",
		".BR podseg\\-segment (1)",
	}
	for _, section := range required {
		if !strings.Contains(out, section) {
			t.Errorf("FormatRoffTopLevel missing %q", section)
		}
	}

	// All subcommands should be listed (check escaped form)
	for _, cmd := range Subcommands {
		escaped := escapeRoff(cmd.Brief)
		if !strings.Contains(out, escaped) {
			t.Errorf("FormatRoffTopLevel missing subcommand brief %q (escaped: %q)", cmd.Brief, escaped)
		}
	}
}

func TestFormatRoffEscapesFlags(t *testing.T) {
	out := FormatRoff(CmdSegment, "2026-02-27")
	if !strings.Contains(out, ".B \\-\\-min\\-topic <n>") {
		t.Errorf("flag names not escaped:\n%s", out)
	}
	if strings.Contains(out, "\n--") {
		t.Error("unescaped leading hyphens in roff output")
	}
}

// quote shows a string with escape sequences visible.
func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// diff shows a line-by-line comparison highlighting the first difference.
func diff(expected, got string) string {
	el := strings.Split(expected, "\n")
	gl := strings.Split(got, "\n")
	max := len(el)
	if len(gl) > max {
		max = len(gl)
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		var e, g string
		if i < len(el) {
			e = el[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if e != g {
			fmt.Fprintf(&b, "! line %d:\n  exp: %q\n  got: %q\n", i+1, e, g)
		}
	}
	return b.String()
}
