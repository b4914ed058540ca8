package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/internal/swimtime"
)

// AllowedDistances are the pool events a time can be recorded for
var AllowedDistances = map[int]bool{25: true, 50: true, 100: true, 200: true, 400: true, 800: true, 1500: true}

// DistanceOptions returns AllowedDistances in ascending order
func DistanceOptions() []int {
	out := make([]int, 0, len(AllowedDistances))
	for d := range AllowedDistances {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// AgeGroupSpan is the width of a masters age group
const AgeGroupSpan = 5

const recentTrials = 10

// RankingServiceRepository defines the repository methods needed by RankingService
type RankingServiceRepository interface {
	repository.MemberRepository
	repository.ResultRepository
	repository.ReferenceRepository
	repository.SettingsRepository
}

// RankingService builds the read-only views: rankings, categories, dashboard
type RankingService struct {
	log               logger.Logger
	repo              RankingServiceRepository
	settings          SettingsServicer
	seasonYear        int
	referenceDistance int
}

// NewRankingService creates a new RankingService
func NewRankingService(log logger.Logger, repo RankingServiceRepository, settings SettingsServicer, seasonYear, referenceDistance int) *RankingService {
	return &RankingService{
		log:               log,
		repo:              repo,
		settings:          settings,
		seasonYear:        seasonYear,
		referenceDistance: referenceDistance,
	}
}

// RankingEntry is one line of a stroke ranking
type RankingEntry struct {
	Position  int           `json:"position"`
	SwimmerID string        `json:"swimmer_id"`
	Name      string        `json:"name"`
	Gender    models.Gender `json:"gender"`
	Age       int           `json:"age"`
	Stroke    models.Stroke `json:"stroke"`
	Distance  int           `json:"distance"`
	Time      float64       `json:"time"`
	Formatted string        `json:"formatted"`
	Date      string        `json:"date,omitempty"`
	VenueID   string        `json:"venue_id,omitempty"`
}

// StrokeRanking ranks swimmers by their best time for a stroke and distance.
// gender "" ranks everyone; distance 0 means the reference distance.
func (s *RankingService) StrokeRanking(ctx context.Context, stroke string, distance int, gender string) ([]RankingEntry, error) {
	st, ok := models.ParseStroke(strings.ToUpper(strings.TrimSpace(stroke)))
	if !ok {
		return nil, ErrInvalidStroke
	}
	if distance == 0 {
		distance = s.referenceDistance
	}
	if !AllowedDistances[distance] {
		return nil, &InvalidDistanceError{Distance: distance}
	}
	var g models.Gender
	if gender != "" {
		if g, ok = models.ParseGender(gender); !ok {
			return nil, ErrInvalidGender
		}
	}

	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	trials, err := s.repo.ListTimeTrials(ctx, distance)
	if err != nil {
		return nil, err
	}
	return rankStroke(members, trials, st, distance, g, s.seasonYear), nil
}

func rankStroke(members []models.Member, trials []models.TimeTrial, stroke models.Stroke, distance int, gender models.Gender, seasonYear int) []RankingEntry {
	byNumber := make(map[string]models.Member, len(members))
	for _, m := range members {
		byNumber[m.Number] = m
	}

	best := make(map[string]RankingEntry)
	for _, tt := range trials {
		if tt.Stroke != stroke || tt.Distance != distance {
			continue
		}
		m, ok := byNumber[tt.SwimmerID]
		if !ok || (gender != "" && m.Gender != gender) {
			continue
		}
		secs := swimtime.Parse(tt.Time)
		if swimtime.IsNoTime(secs) {
			continue
		}
		if cur, ok := best[m.Number]; ok && cur.Time <= secs {
			continue
		}
		best[m.Number] = RankingEntry{
			SwimmerID: m.Number,
			Name:      m.DisplayName(),
			Gender:    m.Gender,
			Age:       ageIn(m.BirthDate, seasonYear),
			Stroke:    stroke,
			Distance:  distance,
			Time:      secs,
			Formatted: swimtime.Format(secs),
			Date:      dateString(tt.Date),
			VenueID:   tt.VenueID,
		}
	}

	entries := make([]RankingEntry, 0, len(best))
	for _, e := range best {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time < entries[j].Time
		}
		return entries[i].Name < entries[j].Name
	})
	// equal times share a position
	for i := range entries {
		if i > 0 && entries[i].Time == entries[i-1].Time {
			entries[i].Position = entries[i-1].Position
		} else {
			entries[i].Position = i + 1
		}
	}
	return entries
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// AgeGroup lists the swimmers of one masters age group
type AgeGroup struct {
	Label string   `json:"label"`
	Min   int      `json:"min"`
	Max   int      `json:"max"`
	Men   []string `json:"men"`
	Women []string `json:"women"`
}

// CategoryOverview shows a ruleset's relay bands and the club's age groups
type CategoryOverview struct {
	Ruleset   string                `json:"ruleset"`
	Rulesets  []string              `json:"rulesets"`
	Bands     []models.CategoryRule `json:"bands"`
	AgeGroups []AgeGroup            `json:"age_groups"`
}

// CategoryOverview returns the bands for ruleset ("" for the default ruleset)
// and the members grouped into five-year age groups
func (s *RankingService) CategoryOverview(ctx context.Context, ruleset string) (*CategoryOverview, error) {
	if ruleset == "" && s.settings != nil {
		var err error
		if ruleset, err = s.settings.DefaultRuleset(ctx); err != nil {
			return nil, err
		}
	}
	rulesets, err := s.repo.ListRulesets(ctx)
	if err != nil {
		return nil, err
	}
	bands, err := s.repo.ListCategoryRules(ctx, ruleset)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	return &CategoryOverview{
		Ruleset:   ruleset,
		Rulesets:  rulesets,
		Bands:     bands,
		AgeGroups: groupByAge(members, s.seasonYear),
	}, nil
}

func groupByAge(members []models.Member, seasonYear int) []AgeGroup {
	groups := make(map[int]*AgeGroup)
	for _, m := range members {
		age := ageIn(m.BirthDate, seasonYear)
		if age <= 0 {
			continue
		}
		lo := age / AgeGroupSpan * AgeGroupSpan
		g, ok := groups[lo]
		if !ok {
			g = &AgeGroup{Label: fmt.Sprintf("%d-%d", lo, lo+AgeGroupSpan-1), Min: lo, Max: lo + AgeGroupSpan - 1}
			groups[lo] = g
		}
		if m.Gender == models.Female {
			g.Women = append(g.Women, m.DisplayName())
		} else {
			g.Men = append(g.Men, m.DisplayName())
		}
	}

	out := make([]AgeGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Min < out[j].Min })
	return out
}

// TrialView is a time trial with the swimmer's name resolved
type TrialView struct {
	models.TimeTrial
	Name string `json:"name"`
}

// Dashboard is the club overview shown after login
type Dashboard struct {
	Stats          map[string]int                   `json:"stats"`
	Men            int                              `json:"men"`
	Women          int                              `json:"women"`
	LastSync       string                           `json:"last_sync"`
	LastSyncSource string                           `json:"last_sync_source"`
	Distance       int                              `json:"distance"`
	Coverage       map[models.Stroke]int            `json:"coverage"`
	Leaders        map[models.Stroke][]RankingEntry `json:"leaders"`
	Recent         []TrialView                      `json:"recent"`
}

// Dashboard returns counts, per-stroke leaders and the latest time trials
func (s *RankingService) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	trials, err := s.repo.ListTimeTrials(ctx, 0)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Stats:    stats,
		Distance: s.referenceDistance,
		Coverage: make(map[models.Stroke]int),
		Leaders:  make(map[models.Stroke][]RankingEntry),
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.Number] = m.DisplayName()
		if m.Gender == models.Female {
			d.Women++
		} else {
			d.Men++
		}
	}
	if s.settings != nil {
		if at, source, err := s.settings.LastSync(ctx); err == nil && !at.IsZero() {
			d.LastSync = at.Local().Format("2006-01-02 15:04")
			d.LastSyncSource = source
		}
	}

	for _, stroke := range models.Strokes {
		ranking := rankStroke(members, trials, stroke, s.referenceDistance, "", s.seasonYear)
		d.Coverage[stroke] = len(ranking)
		if len(ranking) > 3 {
			ranking = ranking[:3]
		}
		d.Leaders[stroke] = ranking
	}

	// trials are ordered oldest first
	for i := len(trials) - 1; i >= 0 && len(d.Recent) < recentTrials; i-- {
		d.Recent = append(d.Recent, TrialView{TimeTrial: trials[i], Name: names[trials[i].SwimmerID]})
	}
	return d, nil
}

// RelayView is a past relay with member names resolved
type RelayView struct {
	models.RelayResult
	Names []string `json:"names"`
}

// SwimmerCard is one member's profile, history and relays
type SwimmerCard struct {
	Member  models.Member         `json:"member"`
	Profile models.SwimmerProfile `json:"profile"`
	Trials  []models.TimeTrial    `json:"trials"`
	Relays  []RelayView           `json:"relays"`
}

// SwimmerCard returns everything recorded for one member, newest first
func (s *RankingService) SwimmerCard(ctx context.Context, number string) (*SwimmerCard, error) {
	m, err := s.repo.GetMember(ctx, number)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUnknownSwimmer
		}
		return nil, err
	}
	trials, err := s.repo.ListTimeTrials(ctx, 0)
	if err != nil {
		return nil, err
	}
	relays, err := s.repo.ListRelayResults(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, mm := range members {
		names[mm.Number] = mm.DisplayName()
	}

	card := &SwimmerCard{Member: *m}
	for i := len(trials) - 1; i >= 0; i-- {
		if trials[i].SwimmerID == m.Number {
			card.Trials = append(card.Trials, trials[i])
		}
	}
	profiles := BuildProfiles([]models.Member{*m}, card.Trials, s.seasonYear, s.referenceDistance)
	card.Profile = profiles[0]

	for i := len(relays) - 1; i >= 0; i-- {
		rr := relays[i]
		if !containsID(rr.MemberIDs, m.Number) {
			continue
		}
		view := RelayView{RelayResult: rr}
		for _, id := range rr.MemberIDs {
			name := names[id]
			if name == "" {
				name = id
			}
			view.Names = append(view.Names, name)
		}
		card.Relays = append(card.Relays, view)
	}
	return card, nil
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
