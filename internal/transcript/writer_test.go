package transcript

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:       "00:00:00",
		5.99:    "00:00:05",
		61:      "00:01:01",
		3725.4:  "01:02:05",
		-3:      "00:00:00",
		86399.9: "23:59:59",
	}
	for in, want := range cases {
		if got := FormatTimestamp(in); got != want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Hello there. How are you?  Great!Fine. ")
	want := []string{"Hello there.", "How are you?", "Great!Fine."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences = %q, want %q", got, want)
	}
	if SplitSentences("   ") != nil {
		t.Error("blank text should produce no sentences")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	segs := []Segment{
		{Timestamp: "00:00:00", Text: "First sentence."},
		{Timestamp: "00:00:04", Text: "Second one?"},
		{Timestamp: "01:10:00", Text: "Late remark!"},
	}
	var buf bytes.Buffer
	if err := Write(&buf, segs); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "[00:00:00] First sentence.\n\n[00:00:04]") {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}
	back, err := Parse(&buf, FailOnMalformed)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, segs) {
		t.Errorf("round trip = %+v", back)
	}
}
