package handlers

import (
	"net/http"
	"time"

	"github.com/abrezinsky/clubdash/internal/services"
)

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	baseURL, err := h.Settings.GetBaseURL(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	ruleset, err := h.Settings.DefaultRuleset(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := SettingsResponse{BaseURL: baseURL, DefaultRuleset: ruleset}
	if at, source, err := h.Settings.LastSync(ctx); err == nil && !at.IsZero() {
		resp.LastSync = at.Format(time.RFC3339)
		resp.LastSyncSource = source
	}
	respondOK(w, resp)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		BaseURL:        req.BaseURL,
		DefaultRuleset: req.DefaultRuleset,
	}); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}
