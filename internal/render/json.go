package render

import (
	"encoding/json"
	"io"

	"github.com/suykerbuyk/podseg/internal/transcript"
)

type jsonReport struct {
	Source       string      `json:"source"`
	Provider     string      `json:"provider,omitempty"`
	Segments     int         `json:"segments"`
	Words        int         `json:"words,omitempty"`
	SpanSeconds  float64     `json:"span_seconds,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Threshold    float64     `json:"threshold"`
	Boundaries   []int       `json:"boundaries"`
	Similarities []float64   `json:"similarities"`
	Smoothed     []float64   `json:"smoothed"`
	Params       jsonParams  `json:"params"`
	Topics       []jsonTopic `json:"topics"`
}

type jsonParams struct {
	WindowSize      int     `json:"window_size"`
	SmoothingKernel int     `json:"smoothing_kernel"`
	Percentile      float64 `json:"percentile"`
	MinTopicSize    int     `json:"min_topic_size"`
	MinSegments     int     `json:"min_segments"`
}

type jsonTopic struct {
	Index    int                  `json:"index"`
	Start    string               `json:"start"`
	End      string               `json:"end"`
	First    int                  `json:"first_segment"`
	Count    int                  `json:"segment_count"`
	Segments []transcript.Segment `json:"segments"`
}

// WriteJSON writes the report, including the similarity curve, as indented
// JSON.
func WriteJSON(w io.Writer, r Report) error {
	res := r.Result
	out := jsonReport{
		Source:       r.Source,
		Provider:     r.Provider,
		Segments:     r.Segments,
		Summary:      r.Summary,
		Threshold:    res.Threshold,
		Boundaries:   nonNilInts(res.Boundaries),
		Similarities: res.Similarities,
		Smoothed:     res.Smoothed,
		Params: jsonParams{
			WindowSize:      r.Config.WindowSize,
			SmoothingKernel: r.Config.SmoothingKernel,
			Percentile:      r.Config.Percentile,
			MinTopicSize:    r.Config.MinTopicSize,
			MinSegments:     r.Config.MinSegments,
		},
		Topics: make([]jsonTopic, 0, len(res.Topics)),
	}
	if st := r.Stats; st != nil {
		out.Words = st.Words
		out.SpanSeconds = st.Span.Seconds()
	}
	for i, t := range res.Topics {
		out.Topics = append(out.Topics, jsonTopic{
			Index:    i + 1,
			Start:    t.StartTime(),
			End:      t.EndTime(),
			First:    t.Start,
			Count:    len(t.Segments),
			Segments: t.Segments,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
