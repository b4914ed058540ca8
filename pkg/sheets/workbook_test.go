package sheets

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/clubdash/internal/models"
)

func TestWorkbook_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	venues := NewTable("Venues", DefaultMockTables()[TabVenues])
	members := NewTable(TabMembers, DefaultMockTables()[TabMembers])
	if err := WriteWorkbook(&buf, venues, members); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	wb, err := ReadWorkbook(&buf)
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}
	if len(wb.Sheets()) != 2 {
		t.Errorf("expected 2 sheets, got %v", wb.Sheets())
	}

	got, err := wb.FetchTable(context.Background(), TabVenues)
	if err != nil {
		t.Fatalf("expected venues sheet by normalized name: %v", err)
	}
	decoded, rowErrs, err := DecodeVenues(got)
	if err != nil || len(rowErrs) != 0 || len(decoded) != 2 {
		t.Fatalf("unexpected decode %+v %v %v", decoded, rowErrs, err)
	}
	if decoded[0].CourseLength != 50 {
		t.Errorf("expected 50m, got %d", decoded[0].CourseLength)
	}

	if _, err := wb.FetchTable(context.Background(), TabRelayResults); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected missing sheet to be unavailable, got %v", err)
	}
	if err := wb.AppendRow(context.Background(), TabMembers, nil); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	if _, err := ReadWorkbook(bytes.NewBufferString("plain text")); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestExportConfirmedTeams(t *testing.T) {
	team := models.ConfirmedTeam{
		ID:        "c1",
		Spec:      models.RaceSpec{Ruleset: "rfen", Mode: models.ModeMedley, Gender: models.Mixed},
		Formatted: "02:08.00",
		Category:  "+120",
	}
	team.Legs[0] = models.LegAssignment{Name: "MORENO, Luis", Stroke: models.Backstroke}

	var buf bytes.Buffer
	if err := ExportConfirmedTeams(&buf, []models.ConfirmedTeam{team}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Relays")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one team, got %d rows", len(rows))
	}
	if rows[1][5] != "02:08.00" || rows[1][6] != "MORENO, Luis (back)" {
		t.Errorf("unexpected row %v", rows[1])
	}
}
