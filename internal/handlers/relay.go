package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// simulatorContext keys the simulator session by the login token and tags the
// context with the member's name for broadcasts
func (h *Handlers) simulatorContext(r *http.Request) (context.Context, string) {
	session, _ := auth.FromContext(r.Context())
	return services.WithOwner(r.Context(), session.Name), session.Token
}

func (h *Handlers) handleGetRelayState(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.simulatorContext(r)

	state, err := h.Relay.State(ctx, sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, state)
}

func (h *Handlers) handleRelaySearch(w http.ResponseWriter, r *http.Request) {
	var req RelaySearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	spec := models.RaceSpec{
		Ruleset: strings.ToLower(strings.TrimSpace(req.Ruleset)),
		Mode:    models.StrokeMode(strings.ToLower(strings.TrimSpace(req.Mode))),
		Gender:  models.GenderRule(strings.ToLower(strings.TrimSpace(req.Gender))),
	}

	ctx, sessionID := h.simulatorContext(r)
	res, err := h.Relay.FindBestTeams(ctx, sessionID, req.SwimmerIDs, spec)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, newRelaySearchResponse(spec, res))
}

func (h *Handlers) handleRelayConfirm(w http.ResponseWriter, r *http.Request) {
	var req RelayConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Index == nil {
		respondError(w, BadRequest("index is required"))
		return
	}

	ctx, sessionID := h.simulatorContext(r)
	team, err := h.Relay.ConfirmTeam(ctx, sessionID, *req.Index)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, team)
}

func (h *Handlers) handleRelayReset(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.simulatorContext(r)

	if err := h.Relay.ResetPool(ctx, sessionID); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Swimmer pool reset")
}

// handleRelayExport downloads the confirmed teams as a workbook
func (h *Handlers) handleRelayExport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.simulatorContext(r)

	var buf bytes.Buffer
	if err := h.Relay.ExportConfirmed(ctx, sessionID, &buf); err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("relays-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(buf.Bytes())
}
