package repository

import (
	"context"

	"github.com/abrezinsky/clubdash/internal/models"
)

// Roster is one complete read of the club spreadsheet
type Roster struct {
	Members       []models.Member
	Venues        []models.Venue
	CategoryRules []models.CategoryRule
	TimeTrials    []models.TimeTrial
	RelayResults  []models.RelayResult
}

// RosterRepository replaces the sheet-sourced data in one step
type RosterRepository interface {
	ReplaceRoster(ctx context.Context, r Roster) error
}

// MemberRepository defines member data operations
type MemberRepository interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, number string) (*models.Member, error)
}

// ResultRepository defines swim and relay result operations
type ResultRepository interface {
	ListTimeTrials(ctx context.Context, distance int) ([]models.TimeTrial, error)
	InsertTimeTrial(ctx context.Context, tt models.TimeTrial) error
	ListRelayResults(ctx context.Context) ([]models.RelayResult, error)
	InsertRelayResult(ctx context.Context, rr models.RelayResult) error
}

// ReferenceRepository defines venue and category rule lookups
type ReferenceRepository interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	ListCategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error)
	ListRulesets(ctx context.Context) ([]string, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetStats(ctx context.Context) (map[string]int, error)
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	RosterRepository
	MemberRepository
	ResultRepository
	ReferenceRepository
	SettingsRepository
}

var _ FullRepository = (*Repository)(nil)
