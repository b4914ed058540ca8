package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/internal/swimtime"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

// Entry kinds, used for metrics and live updates
const (
	EntryTimeTrial   = "time_trial"
	EntryRelayResult = "relay_result"
)

// EntryServiceRepository defines the repository methods needed by EntryService
type EntryServiceRepository interface {
	repository.MemberRepository
	repository.ResultRepository
	repository.ReferenceRepository
}

// EntryService records time trials and relay results typed in by coaches
type EntryService struct {
	log         logger.Logger
	repo        EntryServiceRepository
	client      sheets.Client
	metrics     *metrics.Manager
	broadcaster Broadcaster
	now         func() time.Time
}

// NewEntryService creates a new EntryService. client may be nil, in which
// case entries are only stored locally.
func NewEntryService(log logger.Logger, repo EntryServiceRepository, client sheets.Client) *EntryService {
	return &EntryService{log: log, repo: repo, client: client, now: time.Now}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *EntryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics sets the metrics recorder
func (s *EntryService) SetMetrics(m *metrics.Manager) {
	s.metrics = m
}

// TimeTrialEntry is a time trial as typed into the entry form
type TimeTrialEntry struct {
	SwimmerID string
	Stroke    string
	Distance  int
	Time      string
	Date      string
	VenueID   string
}

// RelayResultEntry is a relay result as typed into the entry form
type RelayResultEntry struct {
	MemberIDs []string
	Time      string
	VenueID   string
	Date      string
}

// EntryResult reports what was stored and whether the sheet accepted it
type EntryResult struct {
	TimeTrial    *models.TimeTrial   `json:"time_trial,omitempty"`
	RelayResult  *models.RelayResult `json:"relay_result,omitempty"`
	SheetWritten bool                `json:"sheet_written"`
	SheetError   string              `json:"sheet_error,omitempty"`
}

// AddTimeTrial validates and stores a time trial, then appends it to the sheet
func (s *EntryService) AddTimeTrial(ctx context.Context, e TimeTrialEntry) (*EntryResult, error) {
	swimmerID := strings.TrimSpace(e.SwimmerID)
	if err := s.requireMember(ctx, swimmerID); err != nil {
		return nil, err
	}
	stroke, ok := models.ParseStroke(strings.ToUpper(strings.TrimSpace(e.Stroke)))
	if !ok {
		return nil, ErrInvalidStroke
	}
	if !AllowedDistances[e.Distance] {
		return nil, &InvalidDistanceError{Distance: e.Distance}
	}
	formatted, err := canonicalTime(e.Time)
	if err != nil {
		return nil, err
	}
	date, err := s.entryDate(e.Date)
	if err != nil {
		return nil, err
	}
	venueID := strings.TrimSpace(e.VenueID)
	if venueID != "" {
		if err := s.requireVenue(ctx, venueID); err != nil {
			return nil, err
		}
	}

	tt := models.TimeTrial{
		ID:        uuid.NewString(),
		SwimmerID: swimmerID,
		Stroke:    stroke,
		Distance:  e.Distance,
		Time:      formatted,
		Date:      date,
		VenueID:   venueID,
	}
	if err := s.repo.InsertTimeTrial(ctx, tt); err != nil {
		return nil, err
	}

	result := &EntryResult{TimeTrial: &tt}
	s.appendToSheet(ctx, sheets.TabTimeTrials, sheets.TimeTrialRow(tt), result)
	s.recorded(EntryTimeTrial, []string{swimmerID})
	s.log.Info("Time trial recorded", "swimmer", swimmerID, "stroke", stroke, "distance", e.Distance, "time", formatted)
	return result, nil
}

// AddRelayResult validates and stores a relay result, then appends it to the sheet
func (s *EntryService) AddRelayResult(ctx context.Context, e RelayResultEntry) (*EntryResult, error) {
	if len(e.MemberIDs) != 4 {
		return nil, ErrRelayNeedsFour
	}
	ids := make([]string, 4)
	seen := make(map[string]bool, 4)
	for i, id := range e.MemberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return nil, ErrRelayNeedsFour
		}
		if err := s.requireMember(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = true
		ids[i] = id
	}
	formatted, err := canonicalTime(e.Time)
	if err != nil {
		return nil, err
	}
	date, err := s.entryDate(e.Date)
	if err != nil {
		return nil, err
	}
	venueID := strings.TrimSpace(e.VenueID)
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	rr := models.RelayResult{
		ID:        uuid.NewString(),
		MemberIDs: ids,
		Time:      formatted,
		VenueID:   venueID,
		Date:      date,
	}
	if err := s.repo.InsertRelayResult(ctx, rr); err != nil {
		return nil, err
	}

	result := &EntryResult{RelayResult: &rr}
	s.appendToSheet(ctx, sheets.TabRelayResults, sheets.RelayResultRow(rr), result)
	s.recorded(EntryRelayResult, ids)
	s.log.Info("Relay result recorded", "members", strings.Join(ids, ","), "time", formatted, "venue", venueID)
	return result, nil
}

func (s *EntryService) requireMember(ctx context.Context, number string) error {
	if number == "" {
		return ErrMemberNumberEmpty
	}
	if _, err := s.repo.GetMember(ctx, number); err != nil {
		if err == repository.ErrNotFound {
			return ErrUnknownSwimmer
		}
		return err
	}
	return nil
}

func (s *EntryService) requireVenue(ctx context.Context, id string) error {
	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		return err
	}
	for _, v := range venues {
		if v.ID == id {
			return nil
		}
	}
	return ErrUnknownVenue
}

// canonicalTime rejects unparseable times and rewrites the rest as MM:SS.cc
func canonicalTime(text string) (string, error) {
	secs := swimtime.Parse(text)
	if swimtime.IsNoTime(secs) || secs <= 0 {
		return "", ErrInvalidTime
	}
	return swimtime.Format(secs), nil
}

func (s *EntryService) entryDate(text string) (time.Time, error) {
	if strings.TrimSpace(text) == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := sheets.ParseDate(text)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// appendToSheet writes the row to the spreadsheet. The entry is already
// stored locally, so sheet failures are reported but not returned.
func (s *EntryService) appendToSheet(ctx context.Context, tab string, row []string, result *EntryResult) {
	if s.client == nil {
		result.SheetError = sheets.ErrReadOnly.Error()
		return
	}
	err := s.client.AppendRow(ctx, tab, row)
	switch {
	case err == nil:
		result.SheetWritten = true
	case errors.Is(err, sheets.ErrReadOnly):
		s.log.Warn("Spreadsheet is read-only, entry kept locally", "tab", tab)
		result.SheetError = err.Error()
	default:
		s.log.Error("Failed to append entry to spreadsheet", "tab", tab, "error", err)
		result.SheetError = err.Error()
	}
}

func (s *EntryService) recorded(kind string, swimmerIDs []string) {
	s.metrics.EntryRecorded(kind)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEntryRecorded(kind, swimmerIDs)
	}
}
