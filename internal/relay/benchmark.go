package relay

import (
	"fmt"
	"sort"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/swimtime"
)

// CompetitiveMargin is how far over a benchmark a team can be and still be flagged competitive
const CompetitiveMargin = 10.0

// Benchmark is a target time for teams whose age-sum is at most Ceiling
type Benchmark struct {
	Ceiling int     `koanf:"ceiling" json:"ceiling"`
	Target  float64 `koanf:"target" json:"target"`
}

// BenchmarkTable holds benchmarks per gender code ("M", "F", "X")
type BenchmarkTable map[string][]Benchmark

// DefaultBenchmarks are 4x50 masters podium times by stroke mode
func DefaultBenchmarks() map[models.StrokeMode]BenchmarkTable {
	return map[models.StrokeMode]BenchmarkTable{
		models.ModeFreestyle: {
			"M": {{119, 108.0}, {159, 112.0}, {199, 118.0}, {239, 128.0}},
			"F": {{119, 122.0}, {159, 127.0}, {199, 134.0}, {239, 146.0}},
			"X": {{119, 114.0}, {159, 119.0}, {199, 125.0}, {239, 136.0}},
		},
		models.ModeMedley: {
			"M": {{119, 120.0}, {159, 125.0}, {199, 132.0}, {239, 144.0}},
			"F": {{119, 136.0}, {159, 142.0}, {199, 150.0}, {239, 164.0}},
			"X": {{119, 127.0}, {159, 133.0}, {199, 140.0}, {239, 153.0}},
		},
	}
}

// Advise compares a team time against the benchmark for its gender and age-sum.
// It returns "" when no ceiling covers ageSum or the time is not close enough.
func Advise(table BenchmarkTable, genderCode string, ageSum int, total float64) string {
	if swimtime.IsNoTime(total) {
		return ""
	}
	marks := append([]Benchmark(nil), table[genderCode]...)
	sort.Slice(marks, func(i, j int) bool { return marks[i].Ceiling < marks[j].Ceiling })

	for _, b := range marks {
		if ageSum > b.Ceiling {
			continue
		}
		switch {
		case total <= b.Target:
			return fmt.Sprintf("Podium pace: at or under the %s benchmark", swimtime.Format(b.Target))
		case total <= b.Target+CompetitiveMargin:
			return fmt.Sprintf("Competitive: within %.0fs of the %s benchmark", CompetitiveMargin, swimtime.Format(b.Target))
		}
		return ""
	}
	return ""
}
