package main

import (
	"net/http"

	"github.com/ironbrothers/ironbrothers/store"
)

const historyLimit = 100

// HandleGetHistory processes GET /history: the caller's resolved missions,
// newest first.
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	events, err := h.db.GetUserEvents(r.Context(), userID, historyLimit)
	if err != nil {
		h.dbError(w, "history", err)
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
