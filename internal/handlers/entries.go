package handlers

import (
	"net/http"

	"github.com/abrezinsky/clubdash/internal/services"
)

// maxUploadSize bounds workbook uploads
const maxUploadSize = 10 << 20

func (h *Handlers) handleAddTimeTrial(w http.ResponseWriter, r *http.Request) {
	var req TimeTrialRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Entries.AddTimeTrial(r.Context(), services.TimeTrialEntry{
		SwimmerID: req.SwimmerID,
		Stroke:    req.Stroke,
		Distance:  req.Distance,
		Time:      req.Time,
		Date:      req.Date,
		VenueID:   req.VenueID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, result)
}

func (h *Handlers) handleAddRelayResult(w http.ResponseWriter, r *http.Request) {
	var req RelayResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Entries.AddRelayResult(r.Context(), services.RelayResultEntry{
		MemberIDs: req.MemberIDs,
		Time:      req.Time,
		VenueID:   req.VenueID,
		Date:      req.Date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, result)
}

// handleSync re-reads the club spreadsheet
func (h *Handlers) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.Roster.Sync(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleImport loads the roster from an uploaded .xlsx in the "workbook" field
func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, BadRequest("Invalid upload: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("workbook")
	if err != nil {
		respondError(w, BadRequest("workbook file is required"))
		return
	}
	defer file.Close()

	result, err := h.Roster.ImportWorkbook(r.Context(), file)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
