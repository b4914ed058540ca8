package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/abrezinsky/clubdash/internal/auth"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// csrfProtect guards form posts. JSON requests are exempt: browsers cannot
// send them cross-origin without a preflight.
func (h *Handlers) csrfProtect(next http.Handler) http.Handler {
	protect := csrf.Protect(
		h.csrfKey,
		csrf.Secure(false),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			next.ServeHTTP(w, r)
			return
		}
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect.ServeHTTP(w, r)
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.csrfProtect)

		// Auth routes (public)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/api/login", h.handleAPILogin)

		// Pages (members)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireMember)
			r.Get("/", h.handleDashboardPage)
			r.Get("/rankings", h.handleRankingsPage)
			r.Get("/categories", h.handleCategoriesPage)
			r.Get("/relays", h.handleRelaysPage)
			r.Get("/swimmers/{number}", h.handleSwimmerPage)
			r.Get("/ws", h.handleWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff)
				r.Get("/entries", h.handleEntriesPage)
				r.Get("/settings", h.handleSettingsPage)
			})
		})

		// API (members)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireMemberAPI)

			r.Post("/api/logout", h.handleAPILogout)
			r.Get("/api/me", h.handleMe)

			// Rankings & stats
			r.Get("/api/dashboard", h.handleGetDashboard)
			r.Get("/api/rankings", h.handleGetRankings)
			r.Get("/api/categories", h.handleGetCategories)
			r.Get("/api/swimmers/{number}", h.handleGetSwimmerCard)
			r.Get("/api/venues", h.handleGetVenues)

			// Relay simulator
			r.Get("/api/relay/state", h.handleGetRelayState)
			r.Post("/api/relay/search", h.handleRelaySearch)
			r.Post("/api/relay/confirm", h.handleRelayConfirm)
			r.Post("/api/relay/reset", h.handleRelayReset)
			r.Get("/api/relay/export", h.handleRelayExport)

			// Coach only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff)

				r.Post("/api/entries/time-trials", h.handleAddTimeTrial)
				r.Post("/api/entries/relay-results", h.handleAddRelayResult)

				r.Post("/api/sync", h.handleSync)
				r.Post("/api/import", h.handleImport)

				r.Get("/api/members", h.handleGetMembers)
				r.Get("/api/members/{number}/qr", h.handleGetLoginCard)

				r.Get("/api/settings", h.handleGetSettings)
				r.Put("/api/settings", h.handleUpdateSettings)
			})
		})
	})

	return r
}
