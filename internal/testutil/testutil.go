package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// NewTestLogger returns a logger that discards everything below error
func NewTestLogger() *logger.SlogLogger {
	return logger.NewWithWriter(io.Discard, slog.LevelError)
}

// SeedRoster decodes the mock spreadsheet's default tables into repo
func SeedRoster(t *testing.T, repo repository.RosterRepository) {
	t.Helper()

	ctx := context.Background()
	client := sheets.NewMockClient()
	fetch := func(tab string) *sheets.Table {
		tbl, err := client.FetchTable(ctx, tab)
		if err != nil {
			t.Fatalf("fetch %s: %v", tab, err)
		}
		return tbl
	}

	var roster repository.Roster
	var err error
	if roster.Members, _, err = sheets.DecodeMembers(fetch(sheets.TabMembers)); err != nil {
		t.Fatal(err)
	}
	if roster.Venues, _, err = sheets.DecodeVenues(fetch(sheets.TabVenues)); err != nil {
		t.Fatal(err)
	}
	if roster.CategoryRules, _, err = sheets.DecodeCategoryRules(fetch(sheets.TabCategoryRules)); err != nil {
		t.Fatal(err)
	}
	if roster.TimeTrials, _, err = sheets.DecodeTimeTrials(fetch(sheets.TabTimeTrials)); err != nil {
		t.Fatal(err)
	}
	if roster.RelayResults, _, err = sheets.DecodeRelayResults(fetch(sheets.TabRelayResults)); err != nil {
		t.Fatal(err)
	}
	if err := repo.ReplaceRoster(ctx, roster); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
}
