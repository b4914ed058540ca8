package sheets

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/clubdash/internal/models"
)

// Workbook is an uploaded .xlsx copy of the club spreadsheet. It serves the
// same tabs as the live sheet, read-only.
type Workbook struct {
	tables map[string]*Table
}

// ReadWorkbook loads every sheet of an .xlsx file. Sheet names are matched
// case-insensitively against the tab names.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: workbook: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	wb := &Workbook{tables: make(map[string]*Table)}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: workbook sheet %s: %v", ErrDataUnavailable, sheet, err)
		}
		name := normalizeHeader(sheet)
		wb.tables[name] = NewTable(name, rows)
	}
	return wb, nil
}

// Sheets returns the normalized sheet names found in the workbook
func (w *Workbook) Sheets() []string {
	out := make([]string, 0, len(w.tables))
	for name := range w.tables {
		out = append(out, name)
	}
	return out
}

// FetchTable returns a loaded sheet
func (w *Workbook) FetchTable(_ context.Context, tab string) (*Table, error) {
	t, ok := w.tables[tab]
	if !ok {
		return nil, fmt.Errorf("%w: workbook has no %s sheet", ErrDataUnavailable, tab)
	}
	return t, nil
}

// AppendRow always fails; uploaded workbooks are never written back
func (w *Workbook) AppendRow(context.Context, string, []string) error {
	return ErrReadOnly
}

var _ Client = (*Workbook)(nil)

var exportHeader = []interface{}{"#", "Ruleset", "Mode", "Gender", "Category", "Total", "Leg 1", "Leg 2", "Leg 3", "Leg 4"}

// ExportConfirmedTeams writes teams as a one-sheet .xlsx
func ExportConfirmedTeams(w io.Writer, teams []models.ConfirmedTeam) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Relays"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, t := range teams {
		row := []interface{}{i + 1, t.Spec.Ruleset, string(t.Spec.Mode), string(t.Spec.Gender), t.Category, t.Formatted}
		for _, leg := range t.Legs {
			row = append(row, fmt.Sprintf("%s (%s)", leg.Name, strings.ToLower(string(leg.Stroke))))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "G", "J", 28); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteWorkbook writes tables as an .xlsx file, one sheet per table
func WriteWorkbook(w io.Writer, tables ...*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		records := append([][]string{t.Header}, t.Rows...)
		for r, rec := range records {
			cells := make([]interface{}, len(rec))
			for c, v := range rec {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.Name, cell, &cells); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}
