package segment

import "github.com/suykerbuyk/podseg/internal/transcript"

// Topic is a contiguous run of segments. Start is the index of its first
// segment in the source sequence.
type Topic struct {
	Start    int
	Segments []transcript.Segment
}

// StartTime is the timestamp of the first segment.
func (t Topic) StartTime() string { return t.Segments[0].Timestamp }

// EndTime is the timestamp of the last segment.
func (t Topic) EndTime() string { return t.Segments[len(t.Segments)-1].Timestamp }

// End is one past the index of the topic's last segment.
func (t Topic) End() int { return t.Start + len(t.Segments) }

// Group partitions segs into topics, starting a new topic at each boundary.
// Boundaries that are out of range or not strictly increasing are ignored,
// so the result is always a partition of segs.
func Group(segs []transcript.Segment, boundaries []int) []Topic {
	if len(segs) == 0 {
		return nil
	}
	var topics []Topic
	start := 0
	for _, b := range boundaries {
		if b <= start || b >= len(segs) {
			continue
		}
		topics = append(topics, Topic{Start: start, Segments: segs[start:b]})
		start = b
	}
	topics = append(topics, Topic{Start: start, Segments: segs[start:]})
	return topics
}
