package handlers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/services"
)

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, t *template.Template, title, nav string, data interface{}) {
	session, _ := auth.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, PageData{
		Title:     title,
		ActiveNav: nav,
		Session:   session,
		CSRFToken: csrf.Token(r),
		Data:      data,
	}); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// pageError reports a service failure as a plain-text page
func (h *Handlers) pageError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	http.Error(w, apiErr.Message, apiErr.Status)
}

func (h *Handlers) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Rankings.Dashboard(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Dashboard, "Dashboard", "dashboard", dash)
}

// RankingsPageData is the rankings page model
type RankingsPageData struct {
	Stroke    string
	Distance  int
	Gender    string
	Strokes   []models.Stroke
	Distances []int
	Entries   []services.RankingEntry
}

func (h *Handlers) handleRankingsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stroke := q.Get("stroke")
	if stroke == "" {
		stroke = string(models.Freestyle)
	}
	distance, err := parseIntQuery(r, "distance")
	if err != nil {
		h.pageError(w, err)
		return
	}

	entries, err := h.Rankings.StrokeRanking(r.Context(), stroke, distance, q.Get("gender"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Rankings, "Rankings", "rankings", RankingsPageData{
		Stroke:    stroke,
		Distance:  distance,
		Gender:    q.Get("gender"),
		Strokes:   models.Strokes,
		Distances: services.DistanceOptions(),
		Entries:   entries,
	})
}

func (h *Handlers) handleCategoriesPage(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Rankings.CategoryOverview(r.Context(), r.URL.Query().Get("ruleset"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Categories, "Categories", "categories", overview)
}

// RelaysPageData is the simulator page model
type RelaysPageData struct {
	Rulesets []string
	Default  string
	State    *services.SimulatorState
}

func (h *Handlers) handleRelaysPage(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.simulatorContext(r)

	state, err := h.Relay.State(ctx, sessionID)
	if err != nil {
		h.pageError(w, err)
		return
	}
	rulesets, err := h.Roster.Rulesets(ctx)
	if err != nil {
		h.pageError(w, err)
		return
	}
	def, err := h.Settings.DefaultRuleset(ctx)
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Relays, "Relay simulator", "relays", RelaysPageData{
		Rulesets: rulesets,
		Default:  def,
		State:    state,
	})
}

func (h *Handlers) handleSwimmerPage(w http.ResponseWriter, r *http.Request) {
	card, err := h.Rankings.SwimmerCard(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Swimmer, card.Member.DisplayName(), "", card)
}

// EntriesPageData is the data entry page model
type EntriesPageData struct {
	Members   []models.Member
	Venues    []models.Venue
	Strokes   []models.Stroke
	Distances []int
}

func (h *Handlers) handleEntriesPage(w http.ResponseWriter, r *http.Request) {
	members, err := h.Members.ListMembers(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	venues, err := h.Roster.Venues(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Entries, "Data entry", "entries", EntriesPageData{
		Members:   members,
		Venues:    venues,
		Strokes:   models.Strokes,
		Distances: services.DistanceOptions(),
	})
}

func (h *Handlers) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, r, h.templates.Settings, "Settings", "settings", settings)
}

func (h *Handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWs(w, r)
}
