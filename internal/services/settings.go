package services

import (
	"context"
	"strings"
	"time"

	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/repository"
)

// Setting keys
const (
	SettingBaseURL        = "base_url"
	SettingDefaultRuleset = "default_ruleset"
	SettingLastSync       = "last_sync"
	SettingLastSyncSource = "last_sync_source"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log            logger.Logger
	repo           repository.SettingsRepository
	defaultRuleset string
}

// NewSettingsService creates a new SettingsService. defaultRuleset is used
// until a ruleset is chosen from the dashboard.
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository, defaultRuleset string) *SettingsService {
	// Rulesets are stored lower-case, as the sheet decoder writes them
	defaultRuleset = strings.ToLower(strings.TrimSpace(defaultRuleset))
	return &SettingsService{log: log, repo: repo, defaultRuleset: defaultRuleset}
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// getOrDefault returns def when the key has never been set
func (s *SettingsService) getOrDefault(ctx context.Context, key, def string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return def, nil
		}
		return "", err // Propagate database errors
	}
	return value, nil
}

// GetBaseURL returns the public URL printed on login cards
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.getOrDefault(ctx, SettingBaseURL, "")
}

// SetBaseURL saves the public URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, SettingBaseURL, strings.TrimRight(url, "/"))
}

// DefaultRuleset returns the ruleset preselected in the simulator
func (s *SettingsService) DefaultRuleset(ctx context.Context) (string, error) {
	return s.getOrDefault(ctx, SettingDefaultRuleset, s.defaultRuleset)
}

// SetDefaultRuleset saves the ruleset preselected in the simulator
func (s *SettingsService) SetDefaultRuleset(ctx context.Context, ruleset string) error {
	return s.repo.SetSetting(ctx, SettingDefaultRuleset, strings.ToLower(strings.TrimSpace(ruleset)))
}

// LastSync returns when and from where the roster was last loaded.
// A zero time means it never was.
func (s *SettingsService) LastSync(ctx context.Context) (time.Time, string, error) {
	value, err := s.getOrDefault(ctx, SettingLastSync, "")
	if err != nil || value == "" {
		return time.Time{}, "", err
	}
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		s.log.Warn("Ignoring malformed last sync time", "value", value)
		return time.Time{}, "", nil
	}
	source, err := s.getOrDefault(ctx, SettingLastSyncSource, "")
	if err != nil {
		return time.Time{}, "", err
	}
	return at, source, nil
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	baseURL, _ := s.GetBaseURL(ctx)
	settings[SettingBaseURL] = baseURL

	ruleset, _ := s.DefaultRuleset(ctx)
	settings[SettingDefaultRuleset] = ruleset

	if at, source, _ := s.LastSync(ctx); !at.IsZero() {
		settings[SettingLastSync] = at.Format(time.RFC3339)
		settings[SettingLastSyncSource] = source
	} else {
		settings[SettingLastSync] = ""
	}

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	BaseURL        string
	DefaultRuleset string
}

// UpdateSettings updates multiple settings at once; empty fields are left alone
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != "" {
		if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.DefaultRuleset != "" {
		if err := s.SetDefaultRuleset(ctx, settings.DefaultRuleset); err != nil {
			return err
		}
	}
	return nil
}
