package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "github.com/abrezinsky/clubdash/internal/errors"
	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/relay"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

// ProfileSource supplies the simulator's roster
type ProfileSource interface {
	Profiles(ctx context.Context) ([]models.SwimmerProfile, error)
	CategoryRules(ctx context.Context, ruleset string) ([]models.CategoryRule, error)
}

// RelayServiceRepository defines the repository methods needed by RelayService
type RelayServiceRepository interface {
	ListRelayResults(ctx context.Context) ([]models.RelayResult, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
}

// RulesetSource returns the ruleset used when a search names none
type RulesetSource interface {
	DefaultRuleset(ctx context.Context) (string, error)
}

// simSession is one login's simulator state plus its last search
type simSession struct {
	*relay.Session
	owner string

	mu       sync.Mutex
	lastSpec models.RaceSpec
	last     []models.TeamCandidate
}

// RelayService runs the relay-team simulator
type RelayService struct {
	log         logger.Logger
	roster      ProfileSource
	repo        RelayServiceRepository
	rulesets    RulesetSource
	optimizer   *relay.Optimizer
	benchmarks  map[models.StrokeMode]relay.BenchmarkTable
	metrics     *metrics.Manager
	broadcaster Broadcaster

	mu       sync.Mutex
	sessions map[string]*simSession
}

// NewRelayService creates a new RelayService
func NewRelayService(
	log logger.Logger,
	roster ProfileSource,
	repo RelayServiceRepository,
	rulesets RulesetSource,
	optimizer *relay.Optimizer,
	benchmarks map[models.StrokeMode]relay.BenchmarkTable,
) *RelayService {
	if optimizer == nil {
		optimizer = relay.New()
	}
	if benchmarks == nil {
		benchmarks = relay.DefaultBenchmarks()
	}
	return &RelayService{
		log:        log,
		roster:     roster,
		repo:       repo,
		rulesets:   rulesets,
		optimizer:  optimizer,
		benchmarks: benchmarks,
		sessions:   make(map[string]*simSession),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RelayService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics sets the metrics recorder
func (s *RelayService) SetMetrics(m *metrics.Manager) {
	s.metrics = m
}

// session returns the simulator session for sessionID, starting one over
// the current roster if needed
func (s *RelayService) session(ctx context.Context, sessionID string) (*simSession, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	ids, err := s.rosterIDs(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	sess = &simSession{Session: relay.NewSession(ids), owner: sessionOwner(ctx)}
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *RelayService) rosterIDs(ctx context.Context) ([]string, error) {
	profiles, err := s.roster.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	return profileIDs(profiles), nil
}

func profileIDs(profiles []models.SwimmerProfile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// ActiveSessions returns how many logins hold simulator state
func (s *RelayService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EndSession forgets the simulator state of a login
func (s *RelayService) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// FindBestTeams searches the selected swimmers that are still eligible in
// the session and returns the fastest legal teams
func (s *RelayService) FindBestTeams(ctx context.Context, sessionID string, selectedIDs []string, spec models.RaceSpec) (*relay.Result, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	spec.Ruleset = strings.ToLower(strings.TrimSpace(spec.Ruleset))
	if spec.Ruleset == "" && s.rulesets != nil {
		if spec.Ruleset, err = s.rulesets.DefaultRuleset(ctx); err != nil {
			return nil, err
		}
	}

	profiles, err := s.roster.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	sess.Refresh(profileIDs(profiles))
	byID := make(map[string]models.SwimmerProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	seen := make(map[string]bool, len(selectedIDs))
	selected := make([]models.SwimmerProfile, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		p, ok := byID[id]
		if !ok {
			return nil, apperrors.Validationf("unknown swimmer %q", id)
		}
		selected = append(selected, p)
	}
	pool := sess.Filter(selected)
	if dropped := len(selected) - len(pool); dropped > 0 {
		s.log.Debug("Ignoring swimmers already in confirmed teams", "count", dropped)
	}

	rules, err := s.roster.CategoryRules(ctx, spec.Ruleset)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.optimizer.FindBestTeams(relay.Input{
		Pool:       pool,
		Spec:       spec,
		Rules:      rules,
		Benchmarks: s.benchmarks[spec.Mode],
		History:    history,
	})
	elapsed := time.Since(start)

	orderings := 0
	if res != nil {
		orderings = res.Stats.Orderings
	}
	s.metrics.RecordSearch(string(spec.Mode), searchOutcome(err), elapsed, orderings)

	if err != nil {
		s.log.Debug("Relay search rejected", "mode", spec.Mode, "gender", spec.Gender, "pool", len(pool), "error", err)
		return nil, classifySearchError(err)
	}

	s.log.Debug("Relay search",
		"mode", spec.Mode,
		"gender", spec.Gender,
		"ruleset", spec.Ruleset,
		"pool", len(pool),
		"combinations", res.Stats.Combinations,
		"accepted", res.Stats.Accepted,
		"orderings", res.Stats.Orderings,
		"elapsed", elapsed)

	sess.mu.Lock()
	sess.lastSpec = spec
	sess.last = append([]models.TeamCandidate(nil), res.Teams...)
	sess.mu.Unlock()
	return res, nil
}

func (s *RelayService) history(ctx context.Context) (*relay.History, error) {
	results, err := s.repo.ListRelayResults(ctx)
	if err != nil {
		return nil, err
	}
	venues, err := s.repo.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	return relay.NewHistory(results, venues), nil
}

func searchOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, relay.ErrNoValidCombination):
		return metrics.OutcomeNoCombination
	default:
		return metrics.OutcomeRejected
	}
}

// classifySearchError keeps "no valid combination" distinct and turns the
// other optimizer refusals into validation errors
func classifySearchError(err error) error {
	switch {
	case errors.Is(err, relay.ErrNoValidCombination):
		return err
	case errors.Is(err, relay.ErrInsufficientSwimmers),
		errors.Is(err, relay.ErrPoolTooLarge),
		errors.Is(err, relay.ErrUnknownMode),
		errors.Is(err, relay.ErrUnknownGenderRule):
		return apperrors.WithKind(err, apperrors.ErrValidation)
	}
	return err
}

// ConfirmTeam accepts the index-th team of the last search and removes its
// swimmers from the session's eligible pool
func (s *RelayService) ConfirmTeam(ctx context.Context, sessionID string, index int) (models.ConfirmedTeam, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return models.ConfirmedTeam{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if index < 0 || index >= len(sess.last) {
		return models.ConfirmedTeam{}, ErrNoSuchCandidate
	}

	team, err := sess.Confirm(sess.lastSpec, sess.last[index])
	if err != nil {
		if errors.Is(err, relay.ErrMemberNotEligible) {
			return models.ConfirmedTeam{}, apperrors.WithKind(err, apperrors.ErrConflict)
		}
		return models.ConfirmedTeam{}, err
	}
	// remaining candidates may share swimmers with the confirmed team
	sess.last = nil

	s.metrics.TeamConfirmed()
	s.log.Info("Relay team confirmed",
		"owner", sess.owner,
		"mode", team.Spec.Mode,
		"gender", team.Spec.Gender,
		"time", team.Formatted,
		"category", team.Category)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastTeamConfirmed(sess.owner, team)
	}
	return team, nil
}

// ResetPool clears confirmed teams and restores the full pool from the
// current roster
func (s *RelayService) ResetPool(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	ids, err := s.rosterIDs(ctx)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.Replace(ids)
	sess.last = nil
	sess.mu.Unlock()

	s.metrics.PoolReset()
	s.log.Debug("Relay pool reset", "owner", sess.owner, "pool", len(ids))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPoolReset(sess.owner)
	}
	return nil
}

// SimulatorState is what the simulator page shows
type SimulatorState struct {
	Eligible   []models.SwimmerProfile `json:"eligible"`
	Confirmed  []models.ConfirmedTeam  `json:"confirmed"`
	LastSpec   models.RaceSpec         `json:"last_spec"`
	Candidates []models.TeamCandidate  `json:"candidates"`
}

// State returns the eligible swimmers, confirmed teams and last results
func (s *RelayService) State(ctx context.Context, sessionID string) (*SimulatorState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.roster.Profiles(ctx)
	if err != nil {
		return nil, err
	}

	sess.Refresh(profileIDs(profiles))
	state := &SimulatorState{
		Eligible:  sess.Filter(profiles),
		Confirmed: sess.Confirmed(),
	}
	sess.mu.Lock()
	state.LastSpec = sess.lastSpec
	state.Candidates = append([]models.TeamCandidate{}, sess.last...)
	sess.mu.Unlock()
	return state, nil
}

// ExportConfirmed writes the session's confirmed teams as an .xlsx workbook
func (s *RelayService) ExportConfirmed(ctx context.Context, sessionID string, w io.Writer) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	return sheets.ExportConfirmedTeams(w, sess.Confirmed())
}

type ownerKey struct{}

// WithOwner attaches the display name of the acting member to ctx
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

func sessionOwner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
