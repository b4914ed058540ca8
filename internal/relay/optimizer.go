// Package relay finds the fastest legal four-swimmer relay teams.
//
// The search is exhaustive: every 4-combination of the pool that satisfies the
// gender rule is tried in all 24 leg orders. Pools are a few dozen swimmers at
// most, so C(n,4)*24 stays small; MaxCombinations guards against larger input.
package relay

import (
	"errors"
	"math"
	"sort"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/swimtime"
)

// TeamSize is the number of swimmers (and legs) in a relay
const TeamSize = 4

// DefaultTopK is how many teams a search returns
const DefaultTopK = 3

// DefaultMaxCombinations caps C(n,4) for a single search
const DefaultMaxCombinations = 2_000_000

var (
	ErrInsufficientSwimmers = errors.New("at least 4 swimmers must be selected")
	ErrNoValidCombination   = errors.New("no combination of the selected swimmers satisfies the gender rule")
	ErrPoolTooLarge         = errors.New("too many swimmers selected for an exhaustive search")
	ErrUnknownMode          = errors.New("unknown stroke mode")
	ErrUnknownGenderRule    = errors.New("unknown gender rule")
)

// Legs returns the stroke of each leg for a mode
func Legs(mode models.StrokeMode) ([TeamSize]models.Stroke, error) {
	switch mode {
	case models.ModeMedley:
		return [TeamSize]models.Stroke{models.Backstroke, models.Breaststroke, models.Butterfly, models.Freestyle}, nil
	case models.ModeFreestyle:
		return [TeamSize]models.Stroke{models.Freestyle, models.Freestyle, models.Freestyle, models.Freestyle}, nil
	}
	return [TeamSize]models.Stroke{}, ErrUnknownMode
}

// Input bundles everything one search needs
type Input struct {
	Pool       []models.SwimmerProfile
	Spec       models.RaceSpec
	Rules      []models.CategoryRule
	Benchmarks BenchmarkTable
	History    *History
}

// Stats describes the work a search did
type Stats struct {
	Combinations int // 4-combinations enumerated
	Accepted     int // combinations passing the gender rule
	Orderings    int // leg orderings evaluated
}

// Result is the outcome of a search
type Result struct {
	Teams []models.TeamCandidate
	Stats Stats
}

// Optimizer runs relay searches
type Optimizer struct {
	TopK            int
	MaxCombinations int
}

// New returns an Optimizer with default limits
func New() *Optimizer {
	return &Optimizer{TopK: DefaultTopK, MaxCombinations: DefaultMaxCombinations}
}

// FindBestTeams returns up to TopK fastest legal teams, fastest first.
func (o *Optimizer) FindBestTeams(in Input) (*Result, error) {
	n := len(in.Pool)
	if n < TeamSize {
		return nil, ErrInsufficientSwimmers
	}
	limit := o.MaxCombinations
	if limit <= 0 {
		limit = DefaultMaxCombinations
	}
	if Choose4(n) > limit {
		return nil, ErrPoolTooLarge
	}
	legs, err := Legs(in.Spec.Mode)
	if err != nil {
		return nil, err
	}
	switch in.Spec.Gender {
	case models.AllMale, models.AllFemale, models.Mixed:
	default:
		return nil, ErrUnknownGenderRule
	}

	res := &Result{}
	var scored []models.TeamCandidate
	var team [TeamSize]models.SwimmerProfile

	for a := 0; a < n-3; a++ {
		for b := a + 1; b < n-2; b++ {
			for c := b + 1; c < n-1; c++ {
				for d := c + 1; d < n; d++ {
					res.Stats.Combinations++
					team = [TeamSize]models.SwimmerProfile{in.Pool[a], in.Pool[b], in.Pool[c], in.Pool[d]}
					if !genderOK(team, in.Spec.Gender) {
						continue
					}
					res.Stats.Accepted++
					best, evaluated := bestOrdering(team, legs)
					res.Stats.Orderings += evaluated
					scored = append(scored, best)
				}
			}
		}
	}

	if len(scored) == 0 {
		return res, ErrNoValidCombination
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].TotalTime < scored[j].TotalTime })

	k := o.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if len(scored) > k {
		scored = scored[:k]
	}

	ages := make(map[string]int, n)
	for _, p := range in.Pool {
		ages[p.ID] = p.Age
	}
	for i := range scored {
		t := &scored[i]
		for _, leg := range t.Legs {
			t.AgeSum += ages[leg.SwimmerID]
		}
		t.Category = Classify(in.Spec.Ruleset, t.AgeSum, in.Rules)
		t.Formatted = swimtime.Format(t.TotalTime)
		t.Advice = Advise(in.Benchmarks, in.Spec.Gender.Code(), t.AgeSum, t.TotalTime)
		t.HistoryNote = in.History.Note(t.MemberIDs())
	}
	res.Teams = scored
	return res, nil
}

// Choose4 returns C(n,4)
func Choose4(n int) int {
	if n < TeamSize {
		return 0
	}
	if n > 50_000 {
		return math.MaxInt
	}
	return n * (n - 1) * (n - 2) * (n - 3) / 24
}

func genderOK(team [TeamSize]models.SwimmerProfile, rule models.GenderRule) bool {
	var men, women int
	for _, s := range team {
		switch s.Gender {
		case models.Male:
			men++
		case models.Female:
			women++
		}
	}
	switch rule {
	case models.AllMale:
		return men == TeamSize
	case models.AllFemale:
		return women == TeamSize
	case models.Mixed:
		return men == 2 && women == 2
	}
	return false
}

// permutations of leg slots in lexicographic order; the first minimum wins ties
var permutations = func() [][TeamSize]int {
	var out [][TeamSize]int
	var rec func(prefix []int, used [TeamSize]bool)
	rec = func(prefix []int, used [TeamSize]bool) {
		if len(prefix) == TeamSize {
			var p [TeamSize]int
			copy(p[:], prefix)
			out = append(out, p)
			return
		}
		for i := 0; i < TeamSize; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			rec(append(prefix, i), used)
			used[i] = false
		}
	}
	rec(nil, [TeamSize]bool{})
	return out
}()

func bestOrdering(team [TeamSize]models.SwimmerProfile, legs [TeamSize]models.Stroke) (models.TeamCandidate, int) {
	bestTotal := 0.0
	var bestPerm [TeamSize]int
	for i, perm := range permutations {
		total := 0.0
		for leg, who := range perm {
			total += legTime(team[who], legs[leg])
		}
		if i == 0 || total < bestTotal {
			bestTotal, bestPerm = total, perm
		}
	}

	var cand models.TeamCandidate
	for leg, who := range bestPerm {
		s := team[who]
		cand.Legs[leg] = models.LegAssignment{
			SwimmerID: s.ID,
			Name:      s.Name,
			Stroke:    legs[leg],
			Time:      legTime(s, legs[leg]),
		}
	}
	cand.TotalTime = bestTotal
	return cand, len(permutations)
}

func legTime(s models.SwimmerProfile, stroke models.Stroke) float64 {
	t, ok := s.BestTimes[stroke]
	if !ok || swimtime.IsNoTime(t) {
		return swimtime.NoTime
	}
	return t
}
