package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/style-genie/internal/session"
)

// SessionsHandler exposes the session tracker.
type SessionsHandler struct {
	sessions *session.Tracker
}

func NewSessionsHandler(sessions *session.Tracker) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// Get handles GET /api/v1/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Delete handles DELETE /api/v1/sessions/{id}. Any analysis still running
// for the session is canceled and its result dropped.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Discard(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
