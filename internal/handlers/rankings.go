package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Rankings.Dashboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, dash)
}

// handleGetRankings serves ?stroke=FREE&distance=50&gender=F
func (h *Handlers) handleGetRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("stroke") == "" {
		respondError(w, BadRequest("stroke is required"))
		return
	}
	distance, err := parseIntQuery(r, "distance")
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.Rankings.StrokeRanking(r.Context(), q.Get("stroke"), distance, q.Get("gender"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entries)
}

func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Rankings.CategoryOverview(r.Context(), r.URL.Query().Get("ruleset"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, overview)
}

func (h *Handlers) handleGetSwimmerCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Rankings.SwimmerCard(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, card)
}

func (h *Handlers) handleGetVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Roster.Venues(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, venues)
}
