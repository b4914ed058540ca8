package models

import (
	"strings"
	"time"
)

// Gender of a swimmer
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// ParseGender accepts the codes used in the club sheets ("M"/"H" for men, "F"/"W" for women)
func ParseGender(s string) (Gender, bool) {
	switch s {
	case "M", "m", "H", "h":
		return Male, true
	case "F", "f", "W", "w":
		return Female, true
	}
	return "", false
}

// Stroke identifies a swimming style
type Stroke string

const (
	Freestyle    Stroke = "FREE"
	Backstroke   Stroke = "BACK"
	Breaststroke Stroke = "BREAST"
	Butterfly    Stroke = "FLY"
)

// Strokes lists every stroke in display order
var Strokes = []Stroke{Freestyle, Backstroke, Breaststroke, Butterfly}

// ParseStroke maps sheet stroke codes (English and Spanish) to a Stroke
func ParseStroke(s string) (Stroke, bool) {
	switch s {
	case "FREE", "free", "CROL", "crol", "LIBRE", "libre":
		return Freestyle, true
	case "BACK", "back", "ESPALDA", "espalda":
		return Backstroke, true
	case "BREAST", "breast", "BRAZA", "braza":
		return Breaststroke, true
	case "FLY", "fly", "MARIPOSA", "mariposa":
		return Butterfly, true
	}
	return "", false
}

// StrokeMode selects the leg layout of a relay
type StrokeMode string

const (
	ModeFreestyle StrokeMode = "freestyle"
	ModeMedley    StrokeMode = "medley"
)

// GenderRule is the gender composition a relay must satisfy
type GenderRule string

const (
	AllMale   GenderRule = "male"
	AllFemale GenderRule = "female"
	Mixed     GenderRule = "mixed"
)

// Code returns the benchmark table key for the rule
func (g GenderRule) Code() string {
	switch g {
	case AllMale:
		return "M"
	case AllFemale:
		return "F"
	default:
		return "X"
	}
}

// Member role values
const (
	RoleSwimmer = "swimmer"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

// Member is a club member as listed in the members tab
type Member struct {
	Number    string    `json:"number"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    Gender    `json:"gender"`
	BirthDate time.Time `json:"birth_date"`
	Role      string    `json:"role"`
}

// DisplayName returns "LASTNAME, Firstname"
func (m Member) DisplayName() string {
	return strings.ToUpper(m.LastName) + ", " + m.FirstName
}

// IsStaff reports whether the member can use coach-only pages
func (m Member) IsStaff() bool {
	return m.Role == RoleCoach || m.Role == RoleAdmin
}

// TimeTrial is one recorded swim
type TimeTrial struct {
	ID        string    `json:"id"`
	SwimmerID string    `json:"swimmer_id"`
	Stroke    Stroke    `json:"stroke"`
	Distance  int       `json:"distance"`
	Time      string    `json:"time"`
	Date      time.Time `json:"date"`
	VenueID   string    `json:"venue_id,omitempty"`
}

// RelayResult is a historical relay swim
type RelayResult struct {
	ID        string    `json:"id"`
	MemberIDs []string  `json:"member_ids"`
	Time      string    `json:"time"`
	VenueID   string    `json:"venue_id"`
	Date      time.Time `json:"date"`
}

// Venue is a pool
type Venue struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CourseLength int    `json:"course_length"`
}

// CategoryRule maps an inclusive age-sum band to a label within a ruleset
type CategoryRule struct {
	Ruleset   string `json:"ruleset"`
	MinAgeSum int    `json:"min_age_sum"`
	MaxAgeSum int    `json:"max_age_sum"`
	Label     string `json:"label"`
}

// SwimmerProfile is the optimizer's view of a swimmer
type SwimmerProfile struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Gender    Gender             `json:"gender"`
	Age       int                `json:"age"`
	BestTimes map[Stroke]float64 `json:"best_times"`
}

// RaceSpec describes the relay being simulated
type RaceSpec struct {
	Ruleset string     `json:"ruleset"`
	Mode    StrokeMode `json:"mode"`
	Gender  GenderRule `json:"gender"`
}

// LegAssignment is one swimmer on one leg
type LegAssignment struct {
	SwimmerID string  `json:"swimmer_id"`
	Name      string  `json:"name"`
	Stroke    Stroke  `json:"stroke"`
	Time      float64 `json:"time"`
}

// TeamCandidate is a scored four-swimmer assignment
type TeamCandidate struct {
	Legs        [4]LegAssignment `json:"legs"`
	TotalTime   float64          `json:"total_time"`
	Formatted   string           `json:"formatted"`
	AgeSum      int              `json:"age_sum"`
	Category    string           `json:"category"`
	Advice      string           `json:"advice,omitempty"`
	HistoryNote string           `json:"history_note,omitempty"`
}

// MemberIDs returns the swimmer IDs in leg order
func (c TeamCandidate) MemberIDs() []string {
	ids := make([]string, len(c.Legs))
	for i, leg := range c.Legs {
		ids[i] = leg.SwimmerID
	}
	return ids
}

// ConfirmedTeam is a candidate accepted during a simulator session
type ConfirmedTeam struct {
	ID          string           `json:"id"`
	Spec        RaceSpec         `json:"spec"`
	Legs        [4]LegAssignment `json:"legs"`
	TotalTime   float64          `json:"total_time"`
	Formatted   string           `json:"formatted"`
	Category    string           `json:"category"`
	ConfirmedAt time.Time        `json:"confirmed_at"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
