package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Members.ListMembers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, MemberResponse{
			Number:      m.Number,
			DisplayName: m.DisplayName(),
			Gender:      m.Gender,
			Role:        m.Role,
		})
	}
	respondOK(w, resp)
}

// handleGetLoginCard returns the PNG QR code that logs a member in
func (h *Handlers) handleGetLoginCard(w http.ResponseWriter, r *http.Request) {
	png, err := h.Members.LoginCardQR(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
