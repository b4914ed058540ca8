package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	apperrors "github.com/abrezinsky/clubdash/internal/errors"
	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/internal/swimtime"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

// Sync sources
const (
	SourceSheet    = "sheet"
	SourceWorkbook = "workbook"
)

// RosterServiceRepository defines the repository methods needed by RosterService
type RosterServiceRepository interface {
	repository.RosterRepository
	repository.MemberRepository
	repository.ResultRepository
	repository.ReferenceRepository
	repository.SettingsRepository
}

// RosterService loads the club spreadsheet and builds swimmer profiles
type RosterService struct {
	log               logger.Logger
	repo              RosterServiceRepository
	client            sheets.Client
	metrics           *metrics.Manager
	broadcaster       Broadcaster
	seasonYear        int
	referenceDistance int
	now               func() time.Time

	syncMu sync.Mutex
}

// NewRosterService creates a new RosterService. client may be nil when no
// spreadsheet is configured; workbook imports still work.
func NewRosterService(log logger.Logger, repo RosterServiceRepository, client sheets.Client, seasonYear, referenceDistance int) *RosterService {
	return &RosterService{
		log:               log,
		repo:              repo,
		client:            client,
		seasonYear:        seasonYear,
		referenceDistance: referenceDistance,
		now:               time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RosterService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics sets the metrics recorder
func (s *RosterService) SetMetrics(m *metrics.Manager) {
	s.metrics = m
}

// SyncResult contains the result of a roster load
type SyncResult struct {
	Source        string    `json:"source"`
	Members       int       `json:"members"`
	Venues        int       `json:"venues"`
	CategoryRules int       `json:"category_rules"`
	TimeTrials    int       `json:"time_trials"`
	RelayResults  int       `json:"relay_results"`
	RowErrors     []string  `json:"row_errors,omitempty"`
	SyncedAt      time.Time `json:"synced_at"`
}

// Sync re-reads every tab of the club spreadsheet into the local store
func (s *RosterService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.client == nil {
		return nil, ErrNoSpreadsheet
	}
	return s.load(ctx, s.client, SourceSheet)
}

// ImportWorkbook loads the roster from an uploaded .xlsx with the same tabs
func (s *RosterService) ImportWorkbook(ctx context.Context, r io.Reader) (*SyncResult, error) {
	wb, err := sheets.ReadWorkbook(r)
	if err != nil {
		s.log.Warn("Workbook upload rejected", "error", err)
		return nil, ErrNotAWorkbook
	}
	return s.load(ctx, wb, SourceWorkbook)
}

func (s *RosterService) load(ctx context.Context, src sheets.Client, source string) (*SyncResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	roster, rowErrs, err := readRoster(ctx, src)
	if err != nil {
		s.log.Error("Roster load failed", "source", source, "error", err)
		s.metrics.RecordSync(source, err, 0, s.now())
		return nil, err
	}

	if err := s.repo.ReplaceRoster(ctx, *roster); err != nil {
		s.metrics.RecordSync(source, err, 0, s.now())
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	if err := s.repo.SetSetting(ctx, SettingLastSync, now.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.repo.SetSetting(ctx, SettingLastSyncSource, source); err != nil {
		return nil, err
	}

	result := &SyncResult{
		Source:        source,
		Members:       len(roster.Members),
		Venues:        len(roster.Venues),
		CategoryRules: len(roster.CategoryRules),
		TimeTrials:    len(roster.TimeTrials),
		RelayResults:  len(roster.RelayResults),
		SyncedAt:      now,
	}
	for _, re := range rowErrs {
		s.log.Warn("Skipped spreadsheet row", "tab", re.Tab, "row", re.Row, "column", re.Column, "error", re.Err)
		result.RowErrors = append(result.RowErrors, re.Error())
	}

	s.metrics.RecordSync(source, nil, len(rowErrs), now)
	s.log.Info("Roster synced",
		"source", source,
		"members", result.Members,
		"time_trials", result.TimeTrials,
		"relay_results", result.RelayResults,
		"row_errors", len(rowErrs))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastDataSynced(result)
	}
	return result, nil
}

// readRoster fetches and decodes every tab. A tab that cannot be fetched or
// lacks a required column makes the whole roster unavailable.
func readRoster(ctx context.Context, src sheets.Client) (*repository.Roster, []sheets.RowError, error) {
	var (
		roster  repository.Roster
		rowErrs []sheets.RowError
		err     error
	)
	if roster.Members, err = decodeTab(ctx, src, sheets.TabMembers, sheets.DecodeMembers, &rowErrs); err != nil {
		return nil, nil, err
	}
	if roster.Venues, err = decodeTab(ctx, src, sheets.TabVenues, sheets.DecodeVenues, &rowErrs); err != nil {
		return nil, nil, err
	}
	if roster.CategoryRules, err = decodeTab(ctx, src, sheets.TabCategoryRules, sheets.DecodeCategoryRules, &rowErrs); err != nil {
		return nil, nil, err
	}
	if roster.TimeTrials, err = decodeTab(ctx, src, sheets.TabTimeTrials, sheets.DecodeTimeTrials, &rowErrs); err != nil {
		return nil, nil, err
	}
	if roster.RelayResults, err = decodeTab(ctx, src, sheets.TabRelayResults, sheets.DecodeRelayResults, &rowErrs); err != nil {
		return nil, nil, err
	}
	return &roster, rowErrs, nil
}

func decodeTab[T any](
	ctx context.Context,
	src sheets.Client,
	tab string,
	decode func(*sheets.Table) ([]T, []sheets.RowError, error),
	rowErrs *[]sheets.RowError,
) ([]T, error) {
	table, err := src.FetchTable(ctx, tab)
	if err != nil {
		return nil, apperrors.Unavailable(err, "read "+tab+" tab")
	}
	records, errs, err := decode(table)
	if err != nil {
		return nil, apperrors.Unavailable(err, "decode "+tab+" tab")
	}
	*rowErrs = append(*rowErrs, errs...)
	return records, nil
}

// Profiles returns every member as a swimmer profile, sorted by name
func (s *RosterService) Profiles(ctx context.Context) ([]models.SwimmerProfile, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	trials, err := s.repo.ListTimeTrials(ctx, s.referenceDistance)
	if err != nil {
		return nil, err
	}
	return BuildProfiles(members, trials, s.seasonYear, s.referenceDistance), nil
}

// BuildProfiles derives profiles from members and their time trials. Only
// trials at distance count; the fastest parseable time per stroke wins.
func BuildProfiles(members []models.Member, trials []models.TimeTrial, seasonYear, distance int) []models.SwimmerProfile {
	best := make(map[string]map[models.Stroke]float64, len(members))
	for _, tt := range trials {
		if tt.Distance != distance {
			continue
		}
		secs := swimtime.Parse(tt.Time)
		if swimtime.IsNoTime(secs) {
			continue
		}
		byStroke := best[tt.SwimmerID]
		if byStroke == nil {
			byStroke = make(map[models.Stroke]float64)
			best[tt.SwimmerID] = byStroke
		}
		if cur, ok := byStroke[tt.Stroke]; !ok || secs < cur {
			byStroke[tt.Stroke] = secs
		}
	}

	profiles := make([]models.SwimmerProfile, 0, len(members))
	for _, m := range members {
		times := best[m.Number]
		if times == nil {
			times = map[models.Stroke]float64{}
		}
		profiles = append(profiles, models.SwimmerProfile{
			ID:        m.Number,
			Name:      m.DisplayName(),
			Gender:    m.Gender,
			Age:       ageIn(m.BirthDate, seasonYear),
			BestTimes: times,
		})
	}
	sort.SliceStable(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

func ageIn(birth time.Time, seasonYear int) int {
	if birth.IsZero() {
		return 0
	}
	return seasonYear - birth.Year()
}

// CategoryRules returns the bands of a ruleset ("" for all)
func (s *RosterService) CategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error) {
	return s.repo.ListCategoryRules(ctx, ruleset)
}

// Rulesets returns the distinct ruleset names
func (s *RosterService) Rulesets(ctx context.Context) ([]string, error) {
	return s.repo.ListRulesets(ctx)
}

// Venues returns all pools
func (s *RosterService) Venues(ctx context.Context) ([]models.Venue, error) {
	return s.repo.ListVenues(ctx)
}
