package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/content"
	"github.com/ironbrothers/ironbrothers/store"
)

// gymProfileRequest carries the editable profile fields with their Spanish
// wire names.
type gymProfileRequest struct {
	Apodo        string  `json:"apodo"`
	Frase        string  `json:"frase"`
	Objetivo     string  `json:"objetivo"`
	Descripcion  string  `json:"descripcion"`
	Edad         int     `json:"edad"`
	PesoCorporal float64 `json:"peso_corporal"`
	Estatura     float64 `json:"estatura"`
	PressBanca   float64 `json:"press_banca"`
	Sentadilla   float64 `json:"sentadilla"`
	PesoMuerto   float64 `json:"peso_muerto"`
	Prensa       float64 `json:"prensa"`
	Biceps       float64 `json:"biceps"`
}

// validate checks the documented field bounds. Text lengths are counted in
// grapheme clusters so accents and emoji don't burn extra budget.
func (req *gymProfileRequest) validate() string {
	req.Apodo = strings.TrimSpace(req.Apodo)
	req.Frase = strings.TrimSpace(req.Frase)
	req.Objetivo = strings.TrimSpace(req.Objetivo)
	req.Descripcion = strings.TrimSpace(req.Descripcion)

	switch {
	case !lengthBetween(req.Apodo, 3, 50):
		return "El apodo debe tener entre 3 y 50 caracteres."
	case !lengthBetween(req.Frase, 5, 100):
		return "La frase debe tener entre 5 y 100 caracteres."
	case !lengthBetween(req.Objetivo, 5, 200):
		return "El objetivo debe tener entre 5 y 200 caracteres."
	case content.GraphemeLength(req.Descripcion) > 500:
		return "La descripción no puede superar 500 caracteres."
	case req.Edad < 7 || req.Edad > 100:
		return "La edad debe estar entre 7 y 100."
	case req.PesoCorporal < 40 || req.PesoCorporal > 250:
		return "El peso corporal debe estar entre 40 y 250 kg."
	case req.Estatura < 100 || req.Estatura > 250:
		return "La estatura debe estar entre 100 y 250 cm."
	case req.PressBanca < 10 || req.PressBanca > 300:
		return "El press de banca debe estar entre 10 y 300 kg."
	case req.Sentadilla < 40 || req.Sentadilla > 400:
		return "La sentadilla debe estar entre 40 y 400 kg."
	case req.PesoMuerto < 30 || req.PesoMuerto > 400:
		return "El peso muerto debe estar entre 30 y 400 kg."
	case req.Prensa < 100 || req.Prensa > 800:
		return "La prensa debe estar entre 100 y 800 kg."
	case req.Biceps < 5 || req.Biceps > 200:
		return "El curl de bíceps debe estar entre 5 y 200 kg."
	}
	return ""
}

func lengthBetween(s string, min, max int) bool {
	n := content.GraphemeLength(s)
	return n >= min && n <= max
}

func (req *gymProfileRequest) toProfile(userID uuid.UUID) *store.Profile {
	return &store.Profile{
		UserID:       userID,
		Apodo:        req.Apodo,
		Frase:        req.Frase,
		Objetivo:     req.Objetivo,
		Descripcion:  req.Descripcion,
		Edad:         req.Edad,
		PesoCorporal: req.PesoCorporal,
		Estatura:     req.Estatura,
		PressBanca:   req.PressBanca,
		Sentadilla:   req.Sentadilla,
		PesoMuerto:   req.PesoMuerto,
		Prensa:       req.Prensa,
		Biceps:       req.Biceps,
	}
}

// HandleGetMyProfile processes GET /profiles.
func (h *Handlers) HandleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	profile, err := h.db.GetProfile(r.Context(), userID)
	if err != nil {
		h.dbError(w, "get profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Perfil no encontrado. Inicializa tu perfil primero.")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleInitProfile processes POST /profiles: creates the gym profile and
// flips the account active.
func (h *Handlers) HandleInitProfile(w http.ResponseWriter, r *http.Request) {
	var req gymProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	existing, err := h.db.GetProfile(ctx, userID)
	if err != nil {
		h.dbError(w, "init profile", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "El perfil ya fue inicializado.")
		return
	}

	profile := req.toProfile(userID)
	if err := h.db.CreateProfile(ctx, profile); err != nil {
		h.dbError(w, "init profile", err)
		return
	}
	if err := h.db.SetUserActive(ctx, userID, true); err != nil {
		h.dbError(w, "init profile", err)
		return
	}

	log.Printf("profile initialized: %s", shortID(userID))
	writeJSON(w, http.StatusCreated, profile)
}

// HandleUpdateProfile processes PUT /profiles.
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req gymProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	profile, err := h.db.UpdateProfile(ctx, req.toProfile(userID))
	if err != nil {
		h.dbError(w, "update profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Perfil no encontrado. Inicializa tu perfil primero.")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleGroupProfiles processes GET /profiles/groups/{groupId}: the group
// leaderboard ordered by aura.
func (h *Handlers) HandleGroupProfiles(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(mux.Vars(r)["groupId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de grupo inválido")
		return
	}

	profiles, err := h.db.GetGroupProfiles(r.Context(), groupID)
	if err != nil {
		h.dbError(w, "group profiles", err)
		return
	}
	if profiles == nil {
		profiles = []store.ProfileWithUser{}
	}
	writeJSON(w, http.StatusOK, profiles)
}
