package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/clubdash/internal/models"
)

// ErrMemberNotEligible is returned when confirming a team with a swimmer already used
var ErrMemberNotEligible = errors.New("swimmer is no longer in the eligible pool")

// Session is one user's simulator state: the roster it last saw, the
// swimmers already placed in confirmed teams, and those teams. Swimmers who
// join the roster later are eligible without a reset. It is safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	full      []string
	used      map[string]bool
	confirmed []models.ConfirmedTeam
	now       func() time.Time
}

// NewSession starts a session whose full pool is ids
func NewSession(ids []string) *Session {
	s := &Session{now: time.Now}
	s.setPool(ids)
	return s
}

func (s *Session) setPool(ids []string) {
	s.full = append([]string(nil), ids...)
	s.used = make(map[string]bool)
	s.confirmed = nil
}

// Eligible returns the unused swimmer IDs in full-pool order
func (s *Session) Eligible() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.full))
	for _, id := range s.full {
		if !s.used[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsEligible reports whether id has not been placed in a confirmed team
func (s *Session) IsEligible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && !s.used[id]
}

// Filter drops the profiles of swimmers already used, preserving order
func (s *Session) Filter(profiles []models.SwimmerProfile) []models.SwimmerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SwimmerProfile, 0, len(profiles))
	for _, p := range profiles {
		if !s.used[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Confirmed returns a copy of the confirmed teams, oldest first
func (s *Session) Confirmed() []models.ConfirmedTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConfirmedTeam(nil), s.confirmed...)
}

// Confirm accepts a candidate and removes its four members from the pool
func (s *Session) Confirm(spec models.RaceSpec, c models.TeamCandidate) (models.ConfirmedTeam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, TeamSize)
	for _, leg := range c.Legs {
		if leg.SwimmerID == "" || s.used[leg.SwimmerID] || seen[leg.SwimmerID] {
			return models.ConfirmedTeam{}, ErrMemberNotEligible
		}
		seen[leg.SwimmerID] = true
	}
	for id := range seen {
		s.used[id] = true
	}

	team := models.ConfirmedTeam{
		ID:          uuid.NewString(),
		Spec:        spec,
		Legs:        c.Legs,
		TotalTime:   c.TotalTime,
		Formatted:   c.Formatted,
		Category:    c.Category,
		ConfirmedAt: s.now(),
	}
	s.confirmed = append(s.confirmed, team)
	return team, nil
}

// Reset restores the full pool and forgets confirmed teams
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPool(s.full)
}

// Replace installs a new full pool and forgets confirmed teams
func (s *Session) Replace(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPool(ids)
}

// Refresh installs the roster after a sync; confirmed teams and used
// swimmers are kept
func (s *Session) Refresh(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = append([]string(nil), ids...)
}
