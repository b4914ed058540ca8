package services

import (
	"context"
	"io"
	"time"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/relay"
)

// Broadcaster defines the interface for pushing live updates to clients
type Broadcaster interface {
	BroadcastDataSynced(result *SyncResult)
	BroadcastTeamConfirmed(owner string, team models.ConfirmedTeam)
	BroadcastPoolReset(owner string)
	BroadcastEntryRecorded(kind string, swimmerIDs []string)
}

// RosterServicer defines the interface for roster operations
type RosterServicer interface {
	Sync(ctx context.Context) (*SyncResult, error)
	ImportWorkbook(ctx context.Context, r io.Reader) (*SyncResult, error)
	Profiles(ctx context.Context) ([]models.SwimmerProfile, error)
	CategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error)
	Rulesets(ctx context.Context) ([]string, error)
	Venues(ctx context.Context) ([]models.Venue, error)
	SetBroadcaster(b Broadcaster)
}

// RelayServicer defines the interface for the relay simulator
type RelayServicer interface {
	FindBestTeams(ctx context.Context, sessionID string, selectedIDs []string, spec models.RaceSpec) (*relay.Result, error)
	ConfirmTeam(ctx context.Context, sessionID string, index int) (models.ConfirmedTeam, error)
	ResetPool(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (*SimulatorState, error)
	ExportConfirmed(ctx context.Context, sessionID string, w io.Writer) error
	EndSession(sessionID string)
	SetBroadcaster(b Broadcaster)
}

// RankingServicer defines the interface for rankings and statistics
type RankingServicer interface {
	StrokeRanking(ctx context.Context, stroke string, distance int, gender string) ([]RankingEntry, error)
	CategoryOverview(ctx context.Context, ruleset string) (*CategoryOverview, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	SwimmerCard(ctx context.Context, number string) (*SwimmerCard, error)
}

// EntryServicer defines the interface for manual data entry
type EntryServicer interface {
	AddTimeTrial(ctx context.Context, e TimeTrialEntry) (*EntryResult, error)
	AddRelayResult(ctx context.Context, e RelayResultEntry) (*EntryResult, error)
	SetBroadcaster(b Broadcaster)
}

// MemberServicer defines the interface for member operations
type MemberServicer interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, number string) (*models.Member, error)
	LoginCardQR(ctx context.Context, number string) ([]byte, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	DefaultRuleset(ctx context.Context) (string, error)
	SetDefaultRuleset(ctx context.Context, ruleset string) error
	LastSync(ctx context.Context) (time.Time, string, error)
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
}

// Ensure concrete types implement interfaces
var (
	_ RosterServicer   = (*RosterService)(nil)
	_ RelayServicer    = (*RelayService)(nil)
	_ RankingServicer  = (*RankingService)(nil)
	_ EntryServicer    = (*EntryService)(nil)
	_ MemberServicer   = (*MemberService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
