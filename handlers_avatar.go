package main

import (
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/media"
)

// HandleUploadAvatar processes POST /users/avatar: a multipart image that
// becomes the caller's square avatar.
func (h *Handlers) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxUploadSize())
	if err := r.ParseMultipartForm(h.media.MaxUploadSize()); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "La imagen es demasiado grande.")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Falta el archivo de imagen.")
		return
	}
	defer file.Close()

	if !media.IsImage(header.Header.Get("Content-Type")) {
		writeError(w, http.StatusUnsupportedMediaType, "El archivo debe ser una imagen.")
		return
	}

	userID := userIDFromContext(r.Context())
	path, err := h.media.SaveAvatar(userID, file)
	if err != nil {
		log.Printf("avatar upload: %v", err)
		writeError(w, http.StatusUnprocessableEntity, "No se pudo procesar la imagen.")
		return
	}

	// The stored location is the public URL path, not the disk path.
	location := h.cfg.Server.APIPrefix + "/users/" + userID.String() + "/avatar"
	if err := h.db.SetUserAvatar(r.Context(), userID, location); err != nil {
		h.dbError(w, "avatar upload", err)
		return
	}

	log.Printf("avatar updated: %s (%s)", shortID(userID), path)
	writeJSON(w, http.StatusOK, map[string]string{"img": location})
}

// HandleGetAvatar processes GET /users/{id}/avatar, serving the stored JPEG.
func (h *Handlers) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador de usuario inválido")
		return
	}

	path := h.media.AvatarPath(userID)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "Avatar no encontrado")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeFile(w, r, path)
}
