package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/podseg/internal/store"
)

func makeRun(input, provider string, at time.Time, segments, topics int, thr float64, dur time.Duration) store.Run {
	return store.Run{
		CreatedAt: at,
		Input:     input,
		Segments:  segments,
		Topics:    topics,
		Threshold: thr,
		Provider:  provider,
		Duration:  dur,
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.TotalRuns != 0 || s.AvgTopicsPerRun != 0 || s.AvgSegmentsPerTopic != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestCompute(t *testing.T) {
	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)
	feb := time.Date(2026, 2, 3, 12, 0, 0, 0, time.Local)
	runs := []store.Run{
		makeRun("/p/ep1.txt", "onnx/all-MiniLM-L6-v2", jan, 120, 6, 0.40, 3*time.Second),
		makeRun("/p/ep1.txt", "hashing/512", feb, 120, 4, 0.20, time.Second),
		makeRun("/p/ep2.txt", "onnx/all-MiniLM-L6-v2", feb, 60, 2, 0.30, 2*time.Second),
		makeRun("/p/ep3.txt", "", feb, 0, 0, 0.30, 0),
	}
	s := Compute(runs)

	if s.TotalRuns != 4 || s.Inputs != 3 {
		t.Errorf("runs=%d inputs=%d", s.TotalRuns, s.Inputs)
	}
	if s.TotalSegments != 300 || s.TotalTopics != 12 {
		t.Errorf("segments=%d topics=%d", s.TotalSegments, s.TotalTopics)
	}
	if s.AvgTopicsPerRun != 3 {
		t.Errorf("AvgTopicsPerRun = %v", s.AvgTopicsPerRun)
	}
	if s.AvgSegmentsPerTopic != 25 {
		t.Errorf("AvgSegmentsPerTopic = %v", s.AvgSegmentsPerTopic)
	}
	if s.TotalDuration != 6*time.Second {
		t.Errorf("TotalDuration = %v", s.TotalDuration)
	}

	if len(s.Providers) != 3 || s.Providers[0].Name != "onnx/all-MiniLM-L6-v2" || s.Providers[0].Runs != 2 {
		t.Errorf("providers = %+v", s.Providers)
	}
	if s.Providers[2].Name != "unknown" {
		t.Errorf("empty provider should be reported as unknown: %+v", s.Providers)
	}

	if len(s.Monthly) != 2 || s.Monthly[0].Month != "2026-01" || s.Monthly[1].Runs != 3 {
		t.Errorf("monthly = %+v", s.Monthly)
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(Summary{}, nil)
	if !strings.Contains(out, "No runs recorded") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormat(t *testing.T) {
	at := time.Date(2026, 2, 3, 9, 30, 0, 0, time.Local)
	runs := []store.Run{
		makeRun("/data/a-very-long-transcript-name-for-an-episode.txt", "hashing/512", at, 1234, 5, 0.3141, 75*time.Second),
	}
	out := Format(Compute(runs), runs)

	for _, want := range []string{
		"podseg history",
		"Overview",
		"1,234",
		"1m 15s",
		"Providers",
		"hashing/512",
		"2026-02",
		"Recent Runs",
		"2026-02-03 09:30",
		"a-very-long-transcript-name-f...",
		"thr 0.3141",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatInt(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -5: "0"}
	for in, want := range tests {
		if got := formatInt(in); got != want {
			t.Errorf("formatInt(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		0:                       "0s",
		1400 * time.Millisecond: "1s",
		59 * time.Second:        "59s",
		2 * time.Minute:         "2m",
		125 * time.Second:       "2m 5s",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}
