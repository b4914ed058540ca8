package services_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/abrezinsky/clubdash/internal/errors"
	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository/mock"
	"github.com/abrezinsky/clubdash/internal/services"
	"github.com/abrezinsky/clubdash/internal/testutil"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

func TestRosterService_Sync(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, sheets.NewMockClient(), testSeason, testDistance)
	svc.SetMetrics(metrics.NewManager())
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	ctx := context.Background()

	result, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if result.Source != services.SourceSheet {
		t.Errorf("expected source sheet, got %q", result.Source)
	}
	if result.Members != 8 || result.Venues != 2 || result.CategoryRules != 4 {
		t.Errorf("unexpected counts %+v", result)
	}
	if result.TimeTrials != 20 || result.RelayResults != 1 {
		t.Errorf("unexpected result counts %+v", result)
	}
	if len(result.RowErrors) != 0 {
		t.Errorf("expected no row errors, got %v", result.RowErrors)
	}
	if len(b.synced) != 1 {
		t.Errorf("expected one data_synced broadcast, got %d", len(b.synced))
	}

	value, err := repo.GetSetting(ctx, services.SettingLastSync)
	if err != nil || value == "" {
		t.Errorf("expected last_sync to be stored, got %q (%v)", value, err)
	}
}

func TestRosterService_Sync_RowErrorsReported(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	client := sheets.NewMockClient(sheets.WithTable(sheets.TabTimeTrials, [][]string{
		{"swimmer", "stroke", "distance", "time"},
		{"101", "FREE", "50", "27.10"},
		{"101", "KICK", "50", "40.00"},
		{"102", "FREE", "fifty", "28.30"},
	}))
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, client, testSeason, testDistance)

	result, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.TimeTrials != 1 {
		t.Errorf("expected 1 good time trial, got %d", result.TimeTrials)
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", result.RowErrors)
	}
	if !strings.Contains(result.RowErrors[0], "time_trials row 3") {
		t.Errorf("expected sheet row number in %q", result.RowErrors[0])
	}
}

func TestRosterService_Sync_Unavailable(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	client := sheets.NewMockClient(sheets.WithFetchError(sheets.TabVenues, sheets.ErrDataUnavailable))
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, client, testSeason, testDistance)
	ctx := context.Background()

	_, err := svc.Sync(ctx)
	if !apperrors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if !errors.Is(err, sheets.ErrDataUnavailable) {
		t.Error("expected the sheet error to be wrapped")
	}

	// nothing was written
	members, _ := repo.ListMembers(ctx)
	if len(members) != 0 {
		t.Errorf("expected empty store after failed sync, got %d members", len(members))
	}
}

func TestRosterService_Sync_MissingColumn(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	client := sheets.NewMockClient(sheets.WithTable(sheets.TabMembers, [][]string{
		{"number", "first_name"},
		{"101", "Pablo"},
	}))
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, client, testSeason, testDistance)

	_, err := svc.Sync(context.Background())
	if !errors.Is(err, sheets.ErrMissingColumn) {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestRosterService_Sync_NoSpreadsheet(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, nil, testSeason, testDistance)

	if _, err := svc.Sync(context.Background()); err != services.ErrNoSpreadsheet {
		t.Fatalf("expected ErrNoSpreadsheet, got %v", err)
	}
}

func TestRosterService_Sync_ReplaceError(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	mockRepo.ReplaceRosterError = errors.New("disk I/O error")
	svc := services.NewRosterService(testutil.NewTestLogger(), mockRepo, sheets.NewMockClient(), testSeason, testDistance)

	_, err := svc.Sync(context.Background())
	if !apperrors.Is(err, apperrors.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRosterService_ImportWorkbook(t *testing.T) {
	var tables []*sheets.Table
	for _, tab := range sheets.Tabs {
		tables = append(tables, sheets.NewTable(tab, sheets.DefaultMockTables()[tab]))
	}
	var buf bytes.Buffer
	if err := sheets.WriteWorkbook(&buf, tables...); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	repo := testutil.NewTestRepository(t)
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, nil, testSeason, testDistance)
	ctx := context.Background()

	result, err := svc.ImportWorkbook(ctx, &buf)
	if err != nil {
		t.Fatalf("ImportWorkbook failed: %v", err)
	}
	if result.Source != services.SourceWorkbook || result.Members != 8 {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := svc.ImportWorkbook(ctx, strings.NewReader("number,name\n")); err != services.ErrNotAWorkbook {
		t.Errorf("expected ErrNotAWorkbook, got %v", err)
	}
}

func TestRosterService_Profiles(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	testutil.SeedRoster(t, repo)
	svc := services.NewRosterService(testutil.NewTestLogger(), repo, nil, testSeason, testDistance)

	profiles, err := svc.Profiles(context.Background())
	if err != nil {
		t.Fatalf("Profiles failed: %v", err)
	}
	if len(profiles) != 8 {
		t.Fatalf("expected 8 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "GARCIA, Pablo" {
		t.Errorf("expected profiles sorted by name, first is %q", profiles[0].Name)
	}
	p := profiles[0]
	if p.Age != 40 || p.Gender != models.Male {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.BestTimes[models.Butterfly] != 30.20 {
		t.Errorf("expected fly 30.20, got %v", p.BestTimes[models.Butterfly])
	}
}

func TestRosterService_ProfilesError(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	mockRepo.ListTimeTrialsError = errors.New("database error")
	svc := services.NewRosterService(testutil.NewTestLogger(), mockRepo, nil, testSeason, testDistance)

	if _, err := svc.Profiles(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildProfiles(t *testing.T) {
	members := []models.Member{
		{Number: "1", FirstName: "Ana", LastName: "Diaz", Gender: models.Female, BirthDate: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "2", FirstName: "Bea", LastName: "Cano", Gender: models.Female},
	}
	trials := []models.TimeTrial{
		{SwimmerID: "1", Stroke: models.Freestyle, Distance: 50, Time: "31.00"},
		{SwimmerID: "1", Stroke: models.Freestyle, Distance: 50, Time: "30.40"},
		{SwimmerID: "1", Stroke: models.Freestyle, Distance: 50, Time: "32.10"},
		{SwimmerID: "1", Stroke: models.Freestyle, Distance: 100, Time: "1:05.00"},
		{SwimmerID: "1", Stroke: models.Backstroke, Distance: 50, Time: "DNS"},
	}

	profiles := services.BuildProfiles(members, trials, 2025, 50)

	if len(profiles) != 2 || profiles[0].ID != "2" {
		t.Fatalf("expected two profiles sorted by name, got %+v", profiles)
	}
	ana := profiles[1]
	if ana.Age != 35 {
		t.Errorf("expected age 35, got %d", ana.Age)
	}
	if ana.BestTimes[models.Freestyle] != 30.40 {
		t.Errorf("expected fastest free 30.40, got %v", ana.BestTimes[models.Freestyle])
	}
	if _, ok := ana.BestTimes[models.Backstroke]; ok {
		t.Error("expected unparseable time to be skipped")
	}
	if profiles[0].Age != 0 || len(profiles[0].BestTimes) != 0 {
		t.Errorf("expected empty profile for member without data, got %+v", profiles[0])
	}
}
