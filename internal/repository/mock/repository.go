package mock

import (
	"context"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ReplaceRosterError = errors.New("database error")
//	svc := services.NewRosterService(log, mockRepo, sheets.NewMockClient(), 2025, 50)
//	_, err := svc.Sync(ctx)
type Repository struct {
	repository.FullRepository

	ReplaceRosterError     error
	ListMembersError       error
	GetMemberError         error
	ListTimeTrialsError    error
	InsertTimeTrialError   error
	ListRelayResultsError  error
	InsertRelayResultError error
	ListVenuesError        error
	ListCategoryRulesError error
	ListRulesetsError      error
	GetSettingError        error
	SetSettingError        error
	GetStatsError          error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) ReplaceRoster(ctx context.Context, r repository.Roster) error {
	if m.ReplaceRosterError != nil {
		return m.ReplaceRosterError
	}
	return m.FullRepository.ReplaceRoster(ctx, r)
}

func (m *Repository) ListMembers(ctx context.Context) ([]models.Member, error) {
	if m.ListMembersError != nil {
		return nil, m.ListMembersError
	}
	return m.FullRepository.ListMembers(ctx)
}

func (m *Repository) GetMember(ctx context.Context, number string) (*models.Member, error) {
	if m.GetMemberError != nil {
		return nil, m.GetMemberError
	}
	return m.FullRepository.GetMember(ctx, number)
}

func (m *Repository) ListTimeTrials(ctx context.Context, distance int) ([]models.TimeTrial, error) {
	if m.ListTimeTrialsError != nil {
		return nil, m.ListTimeTrialsError
	}
	return m.FullRepository.ListTimeTrials(ctx, distance)
}

func (m *Repository) InsertTimeTrial(ctx context.Context, tt models.TimeTrial) error {
	if m.InsertTimeTrialError != nil {
		return m.InsertTimeTrialError
	}
	return m.FullRepository.InsertTimeTrial(ctx, tt)
}

func (m *Repository) ListRelayResults(ctx context.Context) ([]models.RelayResult, error) {
	if m.ListRelayResultsError != nil {
		return nil, m.ListRelayResultsError
	}
	return m.FullRepository.ListRelayResults(ctx)
}

func (m *Repository) InsertRelayResult(ctx context.Context, rr models.RelayResult) error {
	if m.InsertRelayResultError != nil {
		return m.InsertRelayResultError
	}
	return m.FullRepository.InsertRelayResult(ctx, rr)
}

func (m *Repository) ListVenues(ctx context.Context) ([]models.Venue, error) {
	if m.ListVenuesError != nil {
		return nil, m.ListVenuesError
	}
	return m.FullRepository.ListVenues(ctx)
}

func (m *Repository) ListCategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error) {
	if m.ListCategoryRulesError != nil {
		return nil, m.ListCategoryRulesError
	}
	return m.FullRepository.ListCategoryRules(ctx, ruleset)
}

func (m *Repository) ListRulesets(ctx context.Context) ([]string, error) {
	if m.ListRulesetsError != nil {
		return nil, m.ListRulesetsError
	}
	return m.FullRepository.ListRulesets(ctx)
}

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetStats(ctx context.Context) (map[string]int, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}
	return m.FullRepository.GetStats(ctx)
}

var _ repository.FullRepository = (*Repository)(nil)
