package history

import (
	"maps"
	"slices"
	"time"
)

// EngineStats aggregates the runs of one engine.
type EngineStats struct {
	Count       int           `json:"count"`
	AvgTime     time.Duration `json:"avg_time"`
	MinTime     time.Duration `json:"min_time"`
	MaxTime     time.Duration `json:"max_time"`
	AvgQuality  float64       `json:"avg_quality"`
	SuccessRate float64       `json:"success_rate"`
}

// Overall aggregates every run regardless of engine.
type Overall struct {
	AvgTime      time.Duration `json:"avg_time"`
	AvgQuality   float64       `json:"avg_quality"`
	SuccessRate  float64       `json:"success_rate"`
	FallbackRate float64       `json:"fallback_rate"`
}

// Stats summarizes a set of records.
type Stats struct {
	TotalRuns int                    `json:"total_runs"`
	PerEngine map[string]EngineStats `json:"per_engine"`
	Overall   Overall                `json:"overall"`
}

// Engines returns the engine names present in s, sorted.
func (s Stats) Engines() []string {
	return slices.Sorted(maps.Keys(s.PerEngine))
}

// Compute derives statistics from records. A run counts as successful when
// its quality exceeds [AcceptableQuality]; degraded runs carry a quality of
// exactly that value and therefore never do.
func Compute(records []Record) Stats {
	s := Stats{TotalRuns: len(records), PerEngine: map[string]EngineStats{}}
	if len(records) == 0 {
		return s
	}

	type acc struct {
		count, ok  int
		total      time.Duration
		minT, maxT time.Duration
		qualitySum float64
	}
	per := map[string]*acc{}
	var all acc
	fallbacks := 0

	for _, r := range records {
		a := per[r.Engine]
		if a == nil {
			a = &acc{minT: r.ExecutionTime, maxT: r.ExecutionTime}
			per[r.Engine] = a
		}
		for _, x := range []*acc{a, &all} {
			x.count++
			x.total += r.ExecutionTime
			x.qualitySum += r.QualityScore
			if r.QualityScore > AcceptableQuality {
				x.ok++
			}
		}
		a.minT = min(a.minT, r.ExecutionTime)
		a.maxT = max(a.maxT, r.ExecutionTime)
		if !r.Success {
			fallbacks++
		}
	}

	for name, a := range per {
		s.PerEngine[name] = EngineStats{
			Count:       a.count,
			AvgTime:     a.total / time.Duration(a.count),
			MinTime:     a.minT,
			MaxTime:     a.maxT,
			AvgQuality:  a.qualitySum / float64(a.count),
			SuccessRate: float64(a.ok) / float64(a.count),
		}
	}
	s.Overall = Overall{
		AvgTime:      all.total / time.Duration(all.count),
		AvgQuality:   all.qualitySum / float64(all.count),
		SuccessRate:  float64(all.ok) / float64(all.count),
		FallbackRate: float64(fallbacks) / float64(all.count),
	}
	return s
}
