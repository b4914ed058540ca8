package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/internal/repository/mock"
	"github.com/abrezinsky/clubdash/internal/services"
	"github.com/abrezinsky/clubdash/internal/testutil"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

func newEntryService(t *testing.T, client sheets.Client) (*services.EntryService, *repository.Repository, *recordingBroadcaster) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	testutil.SeedRoster(t, repo)
	svc := services.NewEntryService(testutil.NewTestLogger(), repo, client)
	svc.SetMetrics(metrics.NewManager())
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	return svc, repo, b
}

func TestEntryService_AddTimeTrial(t *testing.T) {
	client := sheets.NewMockClient()
	svc, repo, b := newEntryService(t, client)
	ctx := context.Background()

	result, err := svc.AddTimeTrial(ctx, services.TimeTrialEntry{
		SwimmerID: "203",
		Stroke:    "back",
		Distance:  50,
		Time:      "36.5",
		Date:      "15/03/2025",
		VenueID:   "club",
	})
	if err != nil {
		t.Fatalf("AddTimeTrial failed: %v", err)
	}

	tt := result.TimeTrial
	if tt.ID == "" || tt.Stroke != models.Backstroke || tt.Time != "00:36.50" {
		t.Errorf("unexpected stored trial %+v", tt)
	}
	if !tt.Date.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", tt.Date)
	}
	if !result.SheetWritten {
		t.Error("expected the row to be appended to the sheet")
	}

	rows := client.Appended(sheets.TabTimeTrials)
	if len(rows) != 1 || rows[0][0] != tt.ID || rows[0][4] != "00:36.50" {
		t.Errorf("unexpected appended rows %v", rows)
	}

	trials, _ := repo.ListTimeTrials(ctx, 50)
	found := false
	for _, x := range trials {
		if x.ID == tt.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected trial to be stored locally")
	}
	if len(b.entries) != 1 || b.entries[0] != services.EntryTimeTrial {
		t.Errorf("expected entry broadcast, got %v", b.entries)
	}
}

func TestEntryService_AddTimeTrial_Validation(t *testing.T) {
	svc, _, _ := newEntryService(t, sheets.NewMockClient())
	ctx := context.Background()
	valid := services.TimeTrialEntry{SwimmerID: "101", Stroke: "FREE", Distance: 50, Time: "27.00"}

	tests := []struct {
		name   string
		modify func(*services.TimeTrialEntry)
		want   error
	}{
		{"empty swimmer", func(e *services.TimeTrialEntry) { e.SwimmerID = " " }, services.ErrMemberNumberEmpty},
		{"unknown swimmer", func(e *services.TimeTrialEntry) { e.SwimmerID = "999" }, services.ErrUnknownSwimmer},
		{"bad stroke", func(e *services.TimeTrialEntry) { e.Stroke = "kick" }, services.ErrInvalidStroke},
		{"bad time", func(e *services.TimeTrialEntry) { e.Time = "fast" }, services.ErrInvalidTime},
		{"zero time", func(e *services.TimeTrialEntry) { e.Time = "0.00" }, services.ErrInvalidTime},
		{"bad date", func(e *services.TimeTrialEntry) { e.Date = "March 3rd" }, services.ErrInvalidDate},
		{"unknown venue", func(e *services.TimeTrialEntry) { e.VenueID = "lake" }, services.ErrUnknownVenue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.modify(&e)
			if _, err := svc.AddTimeTrial(ctx, e); err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	e := valid
	e.Distance = 75
	var distErr *services.InvalidDistanceError
	if _, err := svc.AddTimeTrial(ctx, e); !errors.As(err, &distErr) {
		t.Errorf("expected InvalidDistanceError, got %v", err)
	}
}

func TestEntryService_ReadOnlySheet(t *testing.T) {
	client := sheets.NewMockClient(sheets.WithAppendError(sheets.ErrReadOnly))
	svc, repo, _ := newEntryService(t, client)
	ctx := context.Background()

	result, err := svc.AddTimeTrial(ctx, services.TimeTrialEntry{SwimmerID: "101", Stroke: "FREE", Distance: 100, Time: "1:01.30"})
	if err != nil {
		t.Fatalf("expected read-only sheet to be tolerated, got %v", err)
	}
	if result.SheetWritten || result.SheetError == "" {
		t.Errorf("expected sheet error to be reported, got %+v", result)
	}

	// the entry survives a sync from a sheet that never received it
	roster := services.NewRosterService(testutil.NewTestLogger(), repo, client, testSeason, testDistance)
	if _, err := roster.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	trials, _ := repo.ListTimeTrials(ctx, 100)
	if len(trials) != 1 || trials[0].ID != result.TimeTrial.ID {
		t.Errorf("expected entered trial to survive sync, got %+v", trials)
	}
}

func TestEntryService_NoClient(t *testing.T) {
	svc, _, _ := newEntryService(t, nil)

	result, err := svc.AddTimeTrial(context.Background(), services.TimeTrialEntry{SwimmerID: "101", Stroke: "FLY", Distance: 50, Time: "29.95"})
	if err != nil {
		t.Fatalf("AddTimeTrial failed: %v", err)
	}
	if result.SheetWritten {
		t.Error("expected nothing written without a client")
	}
}

func TestEntryService_AddRelayResult(t *testing.T) {
	client := sheets.NewMockClient()
	svc, repo, _ := newEntryService(t, client)
	ctx := context.Background()

	result, err := svc.AddRelayResult(ctx, services.RelayResultEntry{
		MemberIDs: []string{"103", "104", "203", "204"},
		Time:      "2:01.9",
		VenueID:   "club",
		Date:      "2025-04-05",
	})
	if err != nil {
		t.Fatalf("AddRelayResult failed: %v", err)
	}
	if result.RelayResult.Time != "02:01.90" || !result.SheetWritten {
		t.Errorf("unexpected result %+v", result)
	}
	if rows := client.Appended(sheets.TabRelayResults); len(rows) != 1 || rows[0][1] != "103" {
		t.Errorf("unexpected appended rows %v", rows)
	}

	relays, _ := repo.ListRelayResults(ctx)
	if len(relays) != 2 {
		t.Errorf("expected 2 relay results, got %d", len(relays))
	}
}

func TestEntryService_AddRelayResult_Validation(t *testing.T) {
	svc, _, _ := newEntryService(t, sheets.NewMockClient())
	ctx := context.Background()

	tests := []struct {
		name  string
		entry services.RelayResultEntry
		want  error
	}{
		{"three swimmers", services.RelayResultEntry{MemberIDs: []string{"101", "102", "103"}, Time: "2:00.00", VenueID: "club"}, services.ErrRelayNeedsFour},
		{"duplicate swimmer", services.RelayResultEntry{MemberIDs: []string{"101", "101", "102", "103"}, Time: "2:00.00", VenueID: "club"}, services.ErrRelayNeedsFour},
		{"unknown swimmer", services.RelayResultEntry{MemberIDs: []string{"101", "102", "103", "999"}, Time: "2:00.00", VenueID: "club"}, services.ErrUnknownSwimmer},
		{"bad time", services.RelayResultEntry{MemberIDs: []string{"101", "102", "103", "104"}, Time: "", VenueID: "club"}, services.ErrInvalidTime},
		{"missing venue", services.RelayResultEntry{MemberIDs: []string{"101", "102", "103", "104"}, Time: "2:00.00"}, services.ErrUnknownVenue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddRelayResult(ctx, tt.entry); err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEntryService_InsertError(t *testing.T) {
	real := testutil.NewTestRepository(t)
	testutil.SeedRoster(t, real)
	mockRepo := mock.NewRepository(real)
	mockRepo.InsertTimeTrialError = errors.New("database is locked")
	client := sheets.NewMockClient()
	svc := services.NewEntryService(testutil.NewTestLogger(), mockRepo, client)

	_, err := svc.AddTimeTrial(context.Background(), services.TimeTrialEntry{SwimmerID: "101", Stroke: "FREE", Distance: 50, Time: "27.00"})
	if err == nil {
		t.Fatal("expected insert error")
	}
	if len(client.Appended(sheets.TabTimeTrials)) != 0 {
		t.Error("nothing should reach the sheet when the local insert fails")
	}
}
