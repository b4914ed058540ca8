package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/clubdash/internal/models"
)

const dateLayout = "2006-01-02"

// Row sources. Sheet rows are replaced on every sync; entry rows were typed
// into the dashboard and survive until the sheet returns the same ID.
const (
	sourceSheet = "sheet"
	sourceEntry = "entry"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New opens (and migrates) the SQLite database at dbPath
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS members (
			number TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			gender TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'swimmer'
		)`,
		`CREATE TABLE IF NOT EXISTS venues (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			course_length INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS category_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ruleset TEXT NOT NULL,
			min_age_sum INTEGER NOT NULL,
			max_age_sum INTEGER NOT NULL,
			label TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS time_trials (
			id TEXT PRIMARY KEY,
			swimmer_id TEXT NOT NULL,
			stroke TEXT NOT NULL,
			distance INTEGER NOT NULL,
			time TEXT NOT NULL,
			date TEXT,
			venue_id TEXT,
			source TEXT NOT NULL DEFAULT 'sheet'
		)`,
		`CREATE TABLE IF NOT EXISTS relay_results (
			id TEXT PRIMARY KEY,
			member_ids TEXT NOT NULL,
			time TEXT NOT NULL,
			venue_id TEXT,
			date TEXT,
			source TEXT NOT NULL DEFAULT 'sheet'
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_time_trials_distance ON time_trials(distance)`,
		`CREATE INDEX IF NOT EXISTS idx_time_trials_swimmer ON time_trials(swimmer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_category_rules_ruleset ON category_rules(ruleset)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Roster ====================

// ReplaceRoster swaps all sheet-sourced rows for r in one transaction.
// Entered rows are kept unless r carries a row with the same ID.
func (r *Repository) ReplaceRoster(ctx context.Context, roster Roster) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM members`,
		`DELETE FROM venues`,
		`DELETE FROM category_rules`,
		`DELETE FROM time_trials WHERE source = 'sheet'`,
		`DELETE FROM relay_results WHERE source = 'sheet'`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, m := range roster.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (number, first_name, last_name, gender, birth_date, role) VALUES (?, ?, ?, ?, ?, ?)`,
			m.Number, m.FirstName, m.LastName, string(m.Gender), formatDate(m.BirthDate), m.Role); err != nil {
			return fmt.Errorf("member %s: %w", m.Number, err)
		}
	}
	for _, v := range roster.Venues {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO venues (id, name, course_length) VALUES (?, ?, ?)`,
			v.ID, v.Name, v.CourseLength); err != nil {
			return fmt.Errorf("venue %s: %w", v.ID, err)
		}
	}
	for _, c := range roster.CategoryRules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_rules (ruleset, min_age_sum, max_age_sum, label) VALUES (?, ?, ?, ?)`,
			c.Ruleset, c.MinAgeSum, c.MaxAgeSum, c.Label); err != nil {
			return err
		}
	}
	for _, tt := range roster.TimeTrials {
		if err := insertTimeTrial(ctx, tx, tt, sourceSheet); err != nil {
			return fmt.Errorf("time trial %s: %w", tt.ID, err)
		}
	}
	for _, rr := range roster.RelayResults {
		if err := insertRelayResult(ctx, tx, rr, sourceSheet); err != nil {
			return fmt.Errorf("relay result %s: %w", rr.ID, err)
		}
	}
	return tx.Commit()
}

// ==================== Members ====================

// ListMembers returns all members ordered by last name
func (r *Repository) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, first_name, last_name, gender, birth_date, role
		FROM members
		ORDER BY last_name, first_name, number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// GetMember looks a member up by membership number
func (r *Repository) GetMember(ctx context.Context, number string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT number, first_name, last_name, gender, birth_date, role
		FROM members WHERE number = ?
	`, number)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (*models.Member, error) {
	var m models.Member
	var gender, birth string
	if err := s.Scan(&m.Number, &m.FirstName, &m.LastName, &gender, &birth, &m.Role); err != nil {
		return nil, err
	}
	m.Gender = models.Gender(gender)
	m.BirthDate = parseDate(birth)
	return &m, nil
}

// ==================== Results ====================

// ListTimeTrials returns the trials at distance (all distances when 0), oldest first
func (r *Repository) ListTimeTrials(ctx context.Context, distance int) ([]models.TimeTrial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, swimmer_id, stroke, distance, time, COALESCE(date, ''), COALESCE(venue_id, '')
		FROM time_trials
		WHERE ? = 0 OR distance = ?
		ORDER BY date, id
	`, distance, distance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []models.TimeTrial
	for rows.Next() {
		var tt models.TimeTrial
		var stroke, date string
		if err := rows.Scan(&tt.ID, &tt.SwimmerID, &stroke, &tt.Distance, &tt.Time, &date, &tt.VenueID); err != nil {
			return nil, err
		}
		tt.Stroke = models.Stroke(stroke)
		tt.Date = parseDate(date)
		trials = append(trials, tt)
	}
	return trials, rows.Err()
}

// InsertTimeTrial stores a trial entered through the dashboard
func (r *Repository) InsertTimeTrial(ctx context.Context, tt models.TimeTrial) error {
	return insertTimeTrial(ctx, r.db, tt, sourceEntry)
}

// ListRelayResults returns all past relay swims
func (r *Repository) ListRelayResults(ctx context.Context) ([]models.RelayResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, member_ids, time, COALESCE(venue_id, ''), COALESCE(date, '')
		FROM relay_results
		ORDER BY date, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RelayResult
	for rows.Next() {
		var rr models.RelayResult
		var members, date string
		if err := rows.Scan(&rr.ID, &members, &rr.Time, &rr.VenueID, &date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &rr.MemberIDs); err != nil {
			return nil, fmt.Errorf("relay result %s: bad member list: %w", rr.ID, err)
		}
		rr.Date = parseDate(date)
		results = append(results, rr)
	}
	return results, rows.Err()
}

// InsertRelayResult stores a relay result entered through the dashboard
func (r *Repository) InsertRelayResult(ctx context.Context, rr models.RelayResult) error {
	return insertRelayResult(ctx, r.db, rr, sourceEntry)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTimeTrial(ctx context.Context, db execer, tt models.TimeTrial, source string) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO time_trials (id, swimmer_id, stroke, distance, time, date, venue_id, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tt.ID, tt.SwimmerID, string(tt.Stroke), tt.Distance, tt.Time, formatDate(tt.Date), tt.VenueID, source)
	return err
}

func insertRelayResult(ctx context.Context, db execer, rr models.RelayResult, source string) error {
	members, err := json.Marshal(rr.MemberIDs)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO relay_results (id, member_ids, time, venue_id, date, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rr.ID, string(members), rr.Time, rr.VenueID, formatDate(rr.Date), source)
	return err
}

// ==================== Reference data ====================

// ListVenues returns all venues by name
func (r *Repository) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, course_length FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.CourseLength); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// ListCategoryRules returns the bands of ruleset in sheet order; all rulesets when empty
func (r *Repository) ListCategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ruleset, min_age_sum, max_age_sum, label
		FROM category_rules
		WHERE ? = '' OR ruleset = ?
		ORDER BY id
	`, ruleset, ruleset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.CategoryRule
	for rows.Next() {
		var c models.CategoryRule
		if err := rows.Scan(&c.Ruleset, &c.MinAgeSum, &c.MaxAgeSum, &c.Label); err != nil {
			return nil, err
		}
		rules = append(rules, c)
	}
	return rules, rows.Err()
}

// ListRulesets returns the distinct ruleset names
func (r *Repository) ListRulesets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ruleset FROM category_rules ORDER BY ruleset`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ==================== Settings ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetStats counts the cached records
func (r *Repository) GetStats(ctx context.Context) (map[string]int, error) {
	var members, swimmers, trials, entered, relays, venues int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM members),
			(SELECT COUNT(*) FROM members WHERE role = 'swimmer'),
			(SELECT COUNT(*) FROM time_trials),
			(SELECT COUNT(*) FROM time_trials WHERE source = 'entry'),
			(SELECT COUNT(*) FROM relay_results),
			(SELECT COUNT(*) FROM venues)
	`).Scan(&members, &swimmers, &trials, &entered, &relays, &venues)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"members":        members,
		"swimmers":       swimmers,
		"time_trials":    trials,
		"entered_trials": entered,
		"relay_results":  relays,
		"venues":         venues,
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
