package sheets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/clubdash/internal/models"
)

// ErrMissingColumn is returned when a tab lacks a required header
var ErrMissingColumn = errors.New("missing column")

// RowError describes one rejected row. Row is the 1-based sheet row number.
type RowError struct {
	Tab    string `json:"tab"`
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Err    error  `json:"-"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s row %d: %s: %v", e.Tab, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.Tab, e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// recordNamespace seeds IDs for rows that carry none, so they stay stable across syncs
var recordNamespace = uuid.MustParse("6f1c2f7e-8a0b-4a57-9d0e-3c1b8f2a9e41")

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "2006/01/02", "02-01-2006"}

// ParseDate accepts ISO dates and day-first dates as the club sheet writes them
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatDate is the layout rows are written back with
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

type rowReader struct {
	tab  string
	cols map[string]int
	errs []RowError
}

func newRowReader(t *Table, required ...string) (*rowReader, error) {
	cols := t.Columns()
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, t.Name, c)
		}
	}
	return &rowReader{tab: t.Name, cols: cols}, nil
}

func (r *rowReader) get(row []string, col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (r *rowReader) fail(i int, col string, err error) {
	r.errs = append(r.errs, RowError{Tab: r.tab, Row: i + 2, Column: col, Err: err})
}

func (r *rowReader) required(i int, row []string, col string) (string, bool) {
	v := r.get(row, col)
	if v == "" {
		r.fail(i, col, errors.New("empty"))
		return "", false
	}
	return v, true
}

func (r *rowReader) int(i int, row []string, col string, optional bool) (int, bool) {
	v := r.get(row, col)
	if v == "" && optional {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(i, col, fmt.Errorf("not a whole number: %q", v))
		return 0, false
	}
	return n, true
}

func (r *rowReader) date(i int, row []string, col string) (time.Time, bool) {
	v := r.get(row, col)
	if v == "" {
		return time.Time{}, true
	}
	t, err := ParseDate(v)
	if err != nil {
		r.fail(i, col, err)
		return time.Time{}, false
	}
	return t, true
}

func rowID(tab string, row []string) string {
	return uuid.NewSHA1(recordNamespace, []byte(tab+"\x00"+strings.Join(row, "\x1f"))).String()
}

// DecodeMembers decodes the members tab
func DecodeMembers(t *Table) ([]models.Member, []RowError, error) {
	r, err := newRowReader(t, "number", "first_name", "last_name", "gender", "birth_date")
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]bool)
	var out []models.Member
	for i, row := range t.Rows {
		num, ok := r.required(i, row, "number")
		if !ok {
			continue
		}
		if seen[num] {
			r.fail(i, "number", fmt.Errorf("duplicate member %s", num))
			continue
		}
		g, ok := models.ParseGender(r.get(row, "gender"))
		if !ok {
			r.fail(i, "gender", fmt.Errorf("unknown value %q", r.get(row, "gender")))
			continue
		}
		birth, err := ParseDate(r.get(row, "birth_date"))
		if err != nil {
			r.fail(i, "birth_date", err)
			continue
		}
		role := strings.ToLower(r.get(row, "role"))
		switch role {
		case "":
			role = models.RoleSwimmer
		case models.RoleSwimmer, models.RoleCoach, models.RoleAdmin:
		default:
			r.fail(i, "role", fmt.Errorf("unknown role %q", role))
			continue
		}
		seen[num] = true
		out = append(out, models.Member{
			Number:    num,
			FirstName: r.get(row, "first_name"),
			LastName:  r.get(row, "last_name"),
			Gender:    g,
			BirthDate: birth,
			Role:      role,
		})
	}
	return out, r.errs, nil
}

// DecodeTimeTrials decodes the time_trials tab. Times are kept as written;
// unreadable times become NoTime when profiles are built.
func DecodeTimeTrials(t *Table) ([]models.TimeTrial, []RowError, error) {
	r, err := newRowReader(t, "swimmer", "stroke", "distance", "time")
	if err != nil {
		return nil, nil, err
	}
	var out []models.TimeTrial
	for i, row := range t.Rows {
		swimmer, ok := r.required(i, row, "swimmer")
		if !ok {
			continue
		}
		stroke, ok := models.ParseStroke(r.get(row, "stroke"))
		if !ok {
			r.fail(i, "stroke", fmt.Errorf("unknown stroke %q", r.get(row, "stroke")))
			continue
		}
		dist, ok := r.int(i, row, "distance", false)
		if !ok {
			continue
		}
		date, ok := r.date(i, row, "date")
		if !ok {
			continue
		}
		id := r.get(row, "id")
		if id == "" {
			id = rowID(t.Name, row)
		}
		out = append(out, models.TimeTrial{
			ID:        id,
			SwimmerID: swimmer,
			Stroke:    stroke,
			Distance:  dist,
			Time:      r.get(row, "time"),
			Date:      date,
			VenueID:   r.get(row, "venue"),
		})
	}
	return out, r.errs, nil
}

var relayMemberColumns = []string{"swimmer_1", "swimmer_2", "swimmer_3", "swimmer_4"}

// DecodeRelayResults decodes the relay_results tab
func DecodeRelayResults(t *Table) ([]models.RelayResult, []RowError, error) {
	r, err := newRowReader(t, append([]string{"time"}, relayMemberColumns...)...)
	if err != nil {
		return nil, nil, err
	}
	var out []models.RelayResult
rows:
	for i, row := range t.Rows {
		members := make([]string, 0, len(relayMemberColumns))
		for _, col := range relayMemberColumns {
			m, ok := r.required(i, row, col)
			if !ok {
				continue rows
			}
			members = append(members, m)
		}
		date, ok := r.date(i, row, "date")
		if !ok {
			continue
		}
		id := r.get(row, "id")
		if id == "" {
			id = rowID(t.Name, row)
		}
		out = append(out, models.RelayResult{
			ID:        id,
			MemberIDs: members,
			Time:      r.get(row, "time"),
			VenueID:   r.get(row, "venue"),
			Date:      date,
		})
	}
	return out, r.errs, nil
}

// DecodeCategoryRules decodes the category_rules tab
func DecodeCategoryRules(t *Table) ([]models.CategoryRule, []RowError, error) {
	r, err := newRowReader(t, "ruleset", "min_age_sum", "max_age_sum", "label")
	if err != nil {
		return nil, nil, err
	}
	var out []models.CategoryRule
	for i, row := range t.Rows {
		ruleset, ok := r.required(i, row, "ruleset")
		if !ok {
			continue
		}
		label, ok := r.required(i, row, "label")
		if !ok {
			continue
		}
		lo, ok := r.int(i, row, "min_age_sum", false)
		if !ok {
			continue
		}
		hi, ok := r.int(i, row, "max_age_sum", false)
		if !ok {
			continue
		}
		if lo > hi {
			r.fail(i, "max_age_sum", fmt.Errorf("band %d-%d is empty", lo, hi))
			continue
		}
		out = append(out, models.CategoryRule{
			Ruleset:   strings.ToLower(ruleset),
			MinAgeSum: lo,
			MaxAgeSum: hi,
			Label:     label,
		})
	}
	return out, r.errs, nil
}

// DecodeVenues decodes the venues tab
func DecodeVenues(t *Table) ([]models.Venue, []RowError, error) {
	r, err := newRowReader(t, "id", "name")
	if err != nil {
		return nil, nil, err
	}
	var out []models.Venue
	for i, row := range t.Rows {
		id, ok := r.required(i, row, "id")
		if !ok {
			continue
		}
		length, ok := r.int(i, row, "course_length", true)
		if !ok {
			continue
		}
		name := r.get(row, "name")
		if name == "" {
			name = id
		}
		out = append(out, models.Venue{ID: id, Name: name, CourseLength: length})
	}
	return out, r.errs, nil
}

// TimeTrialRow encodes a time trial in the column order of TimeTrialHeader
func TimeTrialRow(tt models.TimeTrial) []string {
	return []string{tt.ID, tt.SwimmerID, string(tt.Stroke), strconv.Itoa(tt.Distance), tt.Time, FormatDate(tt.Date), tt.VenueID}
}

// TimeTrialHeader is the header written for new time_trials tabs
var TimeTrialHeader = []string{"id", "swimmer", "stroke", "distance", "time", "date", "venue"}

// RelayResultRow encodes a relay result in the column order of RelayResultHeader
func RelayResultRow(rr models.RelayResult) []string {
	row := []string{rr.ID}
	for i := 0; i < len(relayMemberColumns); i++ {
		if i < len(rr.MemberIDs) {
			row = append(row, rr.MemberIDs[i])
		} else {
			row = append(row, "")
		}
	}
	return append(row, rr.Time, rr.VenueID, FormatDate(rr.Date))
}

// RelayResultHeader is the header written for new relay_results tabs
var RelayResultHeader = append(append([]string{"id"}, relayMemberColumns...), "time", "venue", "date")
