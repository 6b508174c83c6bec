package main

import (
	"log"
	"net/http"
	"strings"
)

type updateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// HandleUpdateUser processes PUT /users: updates the caller's name and role.
func (h *Handlers) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Name(req.Name); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Datos de entrada inválidos. Verifica todos los campos.")
		return
	}
	if err := h.validator.Role(req.Role); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Datos de entrada inválidos. Verifica todos los campos.")
		return
	}

	userID := userIDFromContext(r.Context())
	user, err := h.db.UpdateUser(r.Context(), userID, strings.TrimSpace(req.Name), req.Role)
	if err != nil {
		h.dbError(w, "update user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "Usuario no encontrado. Verifica tu email o regístrate.")
		return
	}

	log.Printf("user updated: %s role=%s", shortID(user.ID), user.Role)
	writeJSON(w, http.StatusOK, user)
}
