package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/podseg/internal/store"
)

// Summary holds aggregate metrics computed from run history.
type Summary struct {
	TotalRuns     int
	TotalSegments int
	TotalTopics   int
	TotalDuration time.Duration
	Inputs        int // distinct transcripts

	AvgTopicsPerRun     float64
	AvgSegmentsPerTopic float64
	AvgThreshold        float64

	Providers []ProviderStats
	Monthly   []MonthStats
}

// ProviderStats holds per-embedding-provider metrics.
type ProviderStats struct {
	Name     string
	Runs     int
	Segments int
	Duration time.Duration
}

// MonthStats holds per-month metrics.
type MonthStats struct {
	Month    string // YYYY-MM
	Runs     int
	Segments int
	Topics   int
}

// Compute builds a Summary from recorded runs.
func Compute(runs []store.Run) Summary {
	var s Summary

	providerMap := make(map[string]*ProviderStats)
	monthMap := make(map[string]*MonthStats)
	inputs := make(map[string]bool)
	var thresholdSum float64

	for _, r := range runs {
		s.TotalRuns++
		s.TotalSegments += r.Segments
		s.TotalTopics += r.Topics
		s.TotalDuration += r.Duration
		thresholdSum += r.Threshold
		inputs[r.Input] = true

		name := r.Provider
		if name == "" {
			name = "unknown"
		}
		ps, ok := providerMap[name]
		if !ok {
			ps = &ProviderStats{Name: name}
			providerMap[name] = ps
		}
		ps.Runs++
		ps.Segments += r.Segments
		ps.Duration += r.Duration

		if !r.CreatedAt.IsZero() {
			month := r.CreatedAt.Local().Format("2006-01")
			mm, ok := monthMap[month]
			if !ok {
				mm = &MonthStats{Month: month}
				monthMap[month] = mm
			}
			mm.Runs++
			mm.Segments += r.Segments
			mm.Topics += r.Topics
		}
	}

	s.Inputs = len(inputs)

	// Averages (guard division by zero)
	if s.TotalRuns > 0 {
		s.AvgTopicsPerRun = float64(s.TotalTopics) / float64(s.TotalRuns)
		s.AvgThreshold = thresholdSum / float64(s.TotalRuns)
	}
	if s.TotalTopics > 0 {
		s.AvgSegmentsPerTopic = float64(s.TotalSegments) / float64(s.TotalTopics)
	}

	// Sort providers by runs desc
	for _, ps := range providerMap {
		s.Providers = append(s.Providers, *ps)
	}
	sort.Slice(s.Providers, func(i, j int) bool {
		if s.Providers[i].Runs != s.Providers[j].Runs {
			return s.Providers[i].Runs > s.Providers[j].Runs
		}
		return strings.ToLower(s.Providers[i].Name) < strings.ToLower(s.Providers[j].Name)
	})

	// Months chronologically
	for _, mm := range monthMap {
		s.Monthly = append(s.Monthly, *mm)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month < s.Monthly[j].Month
	})

	return s
}
