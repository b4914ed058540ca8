package handlers

import (
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/relay"
)

// RelaySearchResponse is the response for a relay search. Teams are indexed
// for RelayConfirmRequest in the order returned.
type RelaySearchResponse struct {
	Spec  models.RaceSpec        `json:"spec"`
	Teams []models.TeamCandidate `json:"teams"`
	Stats SearchStatsResponse    `json:"stats"`
}

// SearchStatsResponse reports how much work the search did
type SearchStatsResponse struct {
	Combinations int `json:"combinations"`
	Accepted     int `json:"accepted"`
	Orderings    int `json:"orderings"`
}

func newRelaySearchResponse(spec models.RaceSpec, res *relay.Result) RelaySearchResponse {
	teams := res.Teams
	if teams == nil {
		teams = []models.TeamCandidate{}
	}
	return RelaySearchResponse{
		Spec:  spec,
		Teams: teams,
		Stats: SearchStatsResponse{
			Combinations: res.Stats.Combinations,
			Accepted:     res.Stats.Accepted,
			Orderings:    res.Stats.Orderings,
		},
	}
}

// MemberResponse is a member as listed for coaches
type MemberResponse struct {
	Number      string        `json:"number"`
	DisplayName string        `json:"display_name"`
	Gender      models.Gender `json:"gender"`
	Role        string        `json:"role"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL        string `json:"base_url"`
	DefaultRuleset string `json:"default_ruleset"`
	LastSync       string `json:"last_sync,omitempty"`
	LastSyncSource string `json:"last_sync_source,omitempty"`
}
