package stats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/suykerbuyk/podseg/internal/store"
)

// Format renders a Summary and the most recent runs as aligned terminal
// output.
func Format(s Summary, recent []store.Run) string {
	if s.TotalRuns == 0 {
		return "podseg history\n\n  No runs recorded. Run `podseg segment <transcript>` first.\n"
	}

	var b strings.Builder
	b.WriteString("podseg history\n")

	// Overview
	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "runs", formatInt(s.TotalRuns))
	fmt.Fprintf(&b, "  %-20s %s\n", "transcripts", formatInt(s.Inputs))
	fmt.Fprintf(&b, "  %-20s %s\n", "segments", formatInt(s.TotalSegments))
	fmt.Fprintf(&b, "  %-20s %s\n", "topics", formatInt(s.TotalTopics))
	fmt.Fprintf(&b, "  %-20s %s\n", "total time", formatDuration(s.TotalDuration))

	// Averages
	b.WriteString("\nAverages\n")
	fmt.Fprintf(&b, "  %-20s %.1f\n", "topics/run", s.AvgTopicsPerRun)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "segments/topic", s.AvgSegmentsPerTopic)
	fmt.Fprintf(&b, "  %-20s %.4f\n", "threshold", s.AvgThreshold)

	// Providers
	if len(s.Providers) > 0 {
		b.WriteString("\nProviders\n")
		for _, p := range s.Providers {
			fmt.Fprintf(&b, "  %-28s %3d runs   %7s segments   %s\n",
				p.Name, p.Runs, formatInt(p.Segments), formatDuration(p.Duration))
		}
	}

	// Monthly Trend
	if len(s.Monthly) > 0 {
		b.WriteString("\nMonthly Trend\n")
		for _, m := range s.Monthly {
			fmt.Fprintf(&b, "  %-12s %3d runs   %7s segments   %4d topics\n",
				m.Month, m.Runs, formatInt(m.Segments), m.Topics)
		}
	}

	// Recent runs
	if len(recent) > 0 {
		b.WriteString("\nRecent Runs\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "  %-16s %-32s %5d seg %3d topics  thr %.4f  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				shorten(filepath.Base(r.Input), 32), r.Segments, r.Topics, r.Threshold, r.Provider)
		}
	}

	return b.String()
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// formatInt formats an integer with comma separators.
func formatInt(n int) string {
	if n < 0 {
		return "0"
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// formatDuration formats a duration as "Xm Ys" or "Xs", rounded to seconds.
func formatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs <= 0 {
		return "0s"
	}
	m := secs / 60
	s := secs % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
