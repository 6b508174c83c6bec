package main

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/store"
)

// HandleGetMissions processes GET /missions: the full catalog.
func (h *Handlers) HandleGetMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.db.GetAllMissions(r.Context())
	if err != nil {
		h.dbError(w, "list missions", err)
		return
	}
	if missions == nil {
		missions = []store.Mission{}
	}
	writeJSON(w, http.StatusOK, missions)
}

// HandleGetLogros processes GET /missions/logros: the achievement gallery.
func (h *Handlers) HandleGetLogros(w http.ResponseWriter, r *http.Request) {
	logros, err := h.db.GetLogros(r.Context())
	if err != nil {
		h.dbError(w, "list logros", err)
		return
	}
	if logros == nil {
		logros = []store.Logro{}
	}
	writeJSON(w, http.StatusOK, logros)
}

// HandleGetMission processes GET /missions/{id}.
func (h *Handlers) HandleGetMission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de misión inválido")
		return
	}

	mission, err := h.db.GetMissionByID(r.Context(), id)
	if err != nil {
		h.dbError(w, "get mission", err)
		return
	}
	if mission == nil {
		writeError(w, http.StatusNotFound, "Misión no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

type updateMissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// HandleUpdateMission processes PUT /missions/{id}: edits a catalog entry.
func (h *Handlers) HandleUpdateMission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de misión inválido")
		return
	}

	var req updateMissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if req.Name == "" || req.Description == "" || req.Points <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Datos de entrada inválidos. Verifica todos los campos.")
		return
	}

	mission, err := h.db.UpdateMission(r.Context(), id, req.Name, req.Description, req.Points)
	if err != nil {
		h.dbError(w, "update mission", err)
		return
	}
	if mission == nil {
		writeError(w, http.StatusNotFound, "Misión no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, mission)
}
