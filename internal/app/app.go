package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/config"
	"github.com/abrezinsky/clubdash/internal/handlers"
	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/metrics"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/relay"
	"github.com/abrezinsky/clubdash/internal/repository"
	"github.com/abrezinsky/clubdash/internal/services"
	"github.com/abrezinsky/clubdash/internal/websocket"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	roster   *services.RosterService
	relay    *services.RelayService
	settings *services.SettingsService
	auth     *auth.Auth
	metrics  *metrics.Manager
	cancel   context.CancelFunc

	syncInterval time.Duration
}

// New creates and initializes a new application instance. client may be nil,
// in which case the roster only changes through workbook imports.
func New(cfg *config.Config, log logger.Logger, client sheets.Client, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.NewManager(metrics.WithRuntimeCollectors())

	// Initialize services
	settingsService := services.NewSettingsService(log, repo, cfg.DefaultRuleset)
	rosterService := services.NewRosterService(log, repo, client, cfg.SeasonYear, cfg.ReferenceDistance)
	optimizer := relay.New()
	if cfg.MaxCombinations > 0 {
		optimizer.MaxCombinations = cfg.MaxCombinations
	}
	relayService := services.NewRelayService(log, rosterService, repo, settingsService, optimizer, benchmarks(cfg))
	rankingService := services.NewRankingService(log, repo, settingsService, cfg.SeasonYear, cfg.ReferenceDistance)
	entryService := services.NewEntryService(log, repo, client)
	memberService := services.NewMemberService(log, repo, settingsService)

	rosterService.SetMetrics(m)
	relayService.SetMetrics(m)
	entryService.SetMetrics(m)

	memberAuth, err := auth.New(cfg.AdminPassword, memberService)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	csrfKey := []byte(cfg.CSRFKey)
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to generate csrf key: %w", err)
		}
	}

	// Hub lives until Close
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.New(log, settingsService)
	hub.Start(ctx)
	rosterService.SetBroadcaster(hub)
	relayService.SetBroadcaster(hub)
	entryService.SetBroadcaster(hub)

	h, err := handlers.New(
		handlers.Services{
			Roster:   rosterService,
			Relay:    relayService,
			Rankings: rankingService,
			Entries:  entryService,
			Members:  memberService,
			Settings: settingsService,
		},
		templatesFS,
		handlers.NewStaticServer(staticFS),
		memberAuth,
		hub,
		m.Handler(),
		csrfKey,
		log,
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	a := &App{
		log:          log,
		handlers:     h,
		repo:         repo,
		roster:       rosterService,
		relay:        relayService,
		settings:     settingsService,
		auth:         memberAuth,
		metrics:      m,
		cancel:       cancel,
		syncInterval: cfg.SyncInterval,
	}
	memberAuth.OnExpire(a.sessionExpired)
	go a.sweepLoop(ctx, sessionSweepInterval)
	if client != nil {
		go a.syncLoop(ctx)
	}
	return a, nil
}

const sessionSweepInterval = 10 * time.Minute

// sessionExpired drops the simulator state of a login that timed out
func (a *App) sessionExpired(token string) {
	a.relay.EndSession(token)
}

// sweepLoop removes expired logins that never came back
func (a *App) sweepLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.auth.Sweep(); n > 0 {
				a.log.Debug("Expired sessions swept", "count", n, "simulator_sessions", a.relay.ActiveSessions())
			}
		}
	}
}

func benchmarks(cfg *config.Config) map[models.StrokeMode]relay.BenchmarkTable {
	if len(cfg.Benchmarks) == 0 {
		return nil
	}
	out := make(map[models.StrokeMode]relay.BenchmarkTable, len(cfg.Benchmarks))
	for mode, table := range cfg.Benchmarks {
		out[models.StrokeMode(strings.ToLower(mode))] = table
	}
	return out
}

// syncLoop loads the spreadsheet once, then again every syncInterval
func (a *App) syncLoop(ctx context.Context) {
	a.syncOnce(ctx)
	if a.syncInterval <= 0 {
		return
	}

	ticker := time.NewTicker(a.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.syncOnce(ctx)
		}
	}
}

// SyncNow re-reads the spreadsheet outside the schedule
func (a *App) SyncNow(ctx context.Context) (*services.SyncResult, error) {
	return a.roster.Sync(ctx)
}

func (a *App) syncOnce(ctx context.Context) {
	res, err := a.roster.Sync(ctx)
	if err != nil {
		// Previous cache stays in place
		a.log.Warn("Scheduled sync failed", "error", err)
		return
	}
	a.log.Info("Roster synced", "members", res.Members, "time_trials", res.TimeTrials, "row_errors", len(res.RowErrors))
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Metrics", "url", baseURL+"/metrics")
	return http.ListenAndServe(addr, a.Router())
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for login cards)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.settings.GetBaseURL(ctx)

	if existing == "" || strings.Contains(existing, "localhost") {
		if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges. Falls back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		s := ip.String()
		if strings.HasPrefix(s, "192.168.") || strings.HasPrefix(s, "10.") || isPrivate172(ip) {
			return s
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
