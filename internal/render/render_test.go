package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/podseg/internal/segment"
	"github.com/suykerbuyk/podseg/internal/transcript"
)

func sampleResult() *segment.Result {
	segs := []transcript.Segment{
		{Timestamp: "00:00:00", Text: "Welcome to the show."},
		{Timestamp: "00:00:04", Text: "Today we talk about bees."},
		{Timestamp: "00:00:09", Text: "Now for the weather."},
	}
	return &segment.Result{
		Topics:       segment.Group(segs, []int{2}),
		Boundaries:   []int{2},
		Similarities: []float64{0.8, 0.1},
		Smoothed:     []float64{0.45, 0.45},
		Threshold:    0.45,
	}
}

func TestWriteText_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleResult().Topics); err != nil {
		t.Fatal(err)
	}

	heavy := strings.Repeat("=", 60)
	light := strings.Repeat("-", 60)
	want := heavy + "\n" +
		"                  TOPIC SEGMENTATION REPORT\n" +
		heavy + "\n\n" +
		"🔹 TOPIC 1\n" +
		light + "\n" +
		"Time Range   : 00:00:00  →  00:00:04\n" +
		"Segment Count: 2\n\n" +
		"Transcript:\n" +
		"• Welcome to the show.\n" +
		"• Today we talk about bees.\n" +
		"\n" + light + "\n\n" +
		"🔹 TOPIC 2\n" +
		light + "\n" +
		"Time Range   : 00:00:09  →  00:00:09\n" +
		"Segment Count: 1\n\n" +
		"Transcript:\n" +
		"• Now for the weather.\n" +
		"\n" + light + "\n\n"

	if got := buf.String(); got != want {
		t.Errorf("text report mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteText_WrapsLongSegments(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("lorem ipsum ", 15))
	topics := segment.Group([]transcript.Segment{{Timestamp: "00:01:00", Text: long}}, nil)

	var buf bytes.Buffer
	if err := WriteText(&buf, topics); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "• lorem ipsum") {
		t.Fatalf("missing bullet:\n%s", out)
	}
	// Continuation lines carry no bullet.
	if strings.Count(out, "• ") != 1 {
		t.Errorf("expected one bullet, got %d", strings.Count(out, "• "))
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"fits", "a b c", 10, []string{"a b c"}},
		{"collapse whitespace", "a \t b\n\nc", 10, []string{"a b c"}},
		{"greedy", "aaa bbb ccc ddd", 7, []string{"aaa bbb", "ccc ddd"}},
		{"exact width", "abcde fghij", 5, []string{"abcde", "fghij"}},
		{"long word alone", "abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"long word after short", "ab cdefghij", 5, []string{"ab cd", "efghi", "j"}},
		{"runes not bytes", "ééé ééé", 3, []string{"ééé", "ééé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrap_LineLengthBound(t *testing.T) {
	text := strings.Repeat("supercalifragilistic ", 20) + strings.Repeat("x", 200)
	for _, line := range Wrap(text, 80) {
		if n := len([]rune(line)); n > 80 {
			t.Errorf("line has %d runes: %q", n, line)
		}
	}
}

func TestMarkdownReport(t *testing.T) {
	r := Report{
		Source:   "/tmp/episode.txt",
		Provider: "hashing/512",
		Segments: 3,
		Config:   segment.DefaultConfig(),
		Result:   sampleResult(),
	}
	out := MarkdownReport(r)
	checks := []string{
		"type: topic-report",
		`source: "/tmp/episode.txt"`,
		"provider: hashing/512",
		"segments: 3",
		"topics: 2",
		"threshold: 0.4500",
		"boundaries: [2]",
		"window_size: 3",
		"# Topics: episode.txt",
		"## Topic 1",
		"*00:00:00 → 00:00:04 · 2 segments*",
		"- `00:00:09` Now for the weather.",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("missing %q in output:\n%s", c, out)
		}
	}
}

func TestMarkdownReport_Stats(t *testing.T) {
	st := transcript.ComputeStats(sampleResult().Topics[0].Segments)
	out := MarkdownReport(Report{Source: "ep.txt", Result: sampleResult(), Stats: &st})
	if !strings.Contains(out, fmt.Sprintf("words: %d\nspan: 4s\n", st.Words)) {
		t.Errorf("missing words/span in frontmatter:\n%s", out)
	}
	if strings.Contains(MarkdownReport(Report{Result: sampleResult()}), "words:") {
		t.Error("words should be omitted without stats")
	}
}

func TestMarkdownReport_Summary(t *testing.T) {
	r := Report{Source: "ep.txt", Result: sampleResult(), Summary: "- bees\n"}
	out := MarkdownReport(r)
	if !strings.Contains(out, "## Summary\n\n- bees\n\n## Topic 1") {
		t.Errorf("summary not placed before topics:\n%s", out)
	}
	if strings.Contains(MarkdownReport(Report{Result: sampleResult()}), "## Summary") {
		t.Error("empty summary should be omitted")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := Report{Source: "ep.txt", Segments: 3, Config: segment.DefaultConfig(), Result: sampleResult()}
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Source     string `json:"source"`
		Boundaries []int  `json:"boundaries"`
		Topics     []struct {
			Index int    `json:"index"`
			Start string `json:"start"`
			First int    `json:"first_segment"`
			Count int    `json:"segment_count"`
		} `json:"topics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if got.Source != "ep.txt" || len(got.Boundaries) != 1 || len(got.Topics) != 2 {
		t.Fatalf("unexpected report: %+v", got)
	}
	if got.Topics[1].Index != 2 || got.Topics[1].First != 2 || got.Topics[1].Count != 1 || got.Topics[1].Start != "00:00:09" {
		t.Errorf("topic 2 = %+v", got.Topics[1])
	}
}

func TestWriteJSON_Stats(t *testing.T) {
	var buf bytes.Buffer
	st := transcript.Stats{Segments: 3, Words: 12, Span: 90 * time.Second}
	if err := WriteJSON(&buf, Report{Result: sampleResult(), Stats: &st}); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Words       int     `json:"words"`
		SpanSeconds float64 `json:"span_seconds"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Words != 12 || got.SpanSeconds != 90 {
		t.Errorf("words/span = %d/%g, want 12/90", got.Words, got.SpanSeconds)
	}
}

func TestWriteJSON_NoBoundariesIsEmptyArray(t *testing.T) {
	res := sampleResult()
	res.Boundaries = nil
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Report{Result: res}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"boundaries": []`) {
		t.Errorf("expected empty boundaries array:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Text, "txt": Text, "md": Markdown, "markdown": Markdown, "json": JSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("html"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		f    Format
		want string
	}{
		{"/data/ep1.txt", Text, "/data/ep1_topics.txt"},
		{"/data/ep1.txt.zst", Markdown, "/data/ep1_topics.md"},
		{"ep2.txt", JSON, "ep2_topics.json"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in, tt.f); got != tt.want {
			t.Errorf("OutputPath(%q, %s) = %q, want %q", tt.in, tt.f, got, tt.want)
		}
	}
}

func TestRender_Dispatch(t *testing.T) {
	r := Report{Source: "ep.txt", Config: segment.DefaultConfig(), Result: sampleResult()}
	for _, f := range []Format{Text, Markdown, JSON} {
		var buf bytes.Buffer
		if err := Render(&buf, f, r); err != nil {
			t.Errorf("Render(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Render(%s) wrote nothing", f)
		}
	}
	if err := Render(&bytes.Buffer{}, Format("pdf"), r); err == nil {
		t.Error("expected error for unknown format")
	}
}
