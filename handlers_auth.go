package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ironbrothers/ironbrothers/auth"
)

// claimTokenID extracts the refresh token ID from JWT claims.
func claimTokenID(claims *auth.Claims) (uuid.UUID, error) {
	return uuid.Parse(claims.ID)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// HandleLogin processes POST /auth/login: verifies credentials and sets the
// session/refresh cookie pair. The body is the authenticated user.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.loginLimiter.Allow(ip) {
		writeError(w, http.StatusTooManyRequests, "Demasiados intentos. Espera un momento.")
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.validator.Email(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos. Verifica el formato de tu email.")
		return
	}

	ctx := r.Context()
	user, err := h.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.dbError(w, "login", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Email o contraseña incorrectos. Por favor, inténtalo de nuevo.")
		return
	}

	secret, err := h.db.GetCredential(ctx, user.ID)
	if err != nil {
		h.dbError(w, "login", err)
		return
	}
	if secret == "" || !h.auth.VerifyPassword(req.Password, secret) {
		log.Printf("login: bad credentials for %s", maskEmail(req.Email))
		writeError(w, http.StatusUnauthorized, "Email o contraseña incorrectos. Por favor, inténtalo de nuevo.")
		return
	}

	if err := h.issueSession(ctx, w, user.ID); err != nil {
		h.dbError(w, "login", err)
		return
	}
	h.loginLimiter.Reset(ip)

	log.Printf("login: %s (%s)", maskEmail(user.Email), shortID(user.ID))
	writeJSON(w, http.StatusOK, user)
}

// HandleRegister processes POST /auth/register: creates the account and logs
// it in by setting the cookie pair.
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.loginLimiter.Allow(ip) {
		writeError(w, http.StatusTooManyRequests, "Demasiados intentos. Espera un momento.")
		return
	}

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.validator.Email(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos. Verifica el formato de tu email.")
		return
	}
	if err := h.validator.Password(req.Password); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Datos de entrada inválidos. Verifica todos los campos.")
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

	ctx := r.Context()
	exists, err := h.db.EmailExists(ctx, req.Email)
	if err != nil {
		h.dbError(w, "register", err)
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "Este email ya está registrado. Inicia sesión o usa otro email.")
		return
	}

	hashed, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.dbError(w, "register", err)
		return
	}

	user, err := h.db.CreateUser(ctx, req.Email, strings.TrimSpace(req.Name), req.Role, hashed)
	if err != nil {
		h.dbError(w, "register", err)
		return
	}

	// A pending invite for this email joins the new account to its group.
	h.applyPendingInvite(ctx, user)

	if err := h.issueSession(ctx, w, user.ID); err != nil {
		h.dbError(w, "register", err)
		return
	}

	log.Printf("register: %s (%s) role=%s", maskEmail(user.Email), shortID(user.ID), user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// HandleRefresh processes POST /auth/refresh: validates the refresh cookie,
// consumes its allowlist entry and rotates the whole cookie pair.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	claims, err := h.auth.ValidateToken(cookie.Value, auth.KindRefresh)
	if err != nil {
		h.clearAuthCookies(w)
		writeError(w, http.StatusUnauthorized, "Sesión expirada. Inicia sesión de nuevo.")
		return
	}

	ctx := r.Context()
	if h.redis != nil {
		tokenID, parseErr := claimTokenID(claims)
		if parseErr != nil {
			h.clearAuthCookies(w)
			writeError(w, http.StatusUnauthorized, "Sesión expirada. Inicia sesión de nuevo.")
			return
		}
		ok, err := h.redis.ConsumeRefreshToken(ctx, claims.UserID, tokenID)
		if err != nil {
			h.dbError(w, "refresh", err)
			return
		}
		if !ok {
			// Rotated or revoked; a replayed cookie ends the session.
			h.clearAuthCookies(w)
			writeError(w, http.StatusUnauthorized, "Sesión expirada. Inicia sesión de nuevo.")
			return
		}
	}

	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		h.dbError(w, "refresh", err)
		return
	}
	if user == nil {
		h.clearAuthCookies(w)
		writeError(w, http.StatusUnauthorized, "Sesión expirada. Inicia sesión de nuevo.")
		return
	}

	if err := h.issueSession(ctx, w, user.ID); err != nil {
		h.dbError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout processes POST /auth/logout: revokes the refresh allowlist
// entry and clears both cookies. Always succeeds for a well-formed request.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.redis != nil {
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			if claims, err := h.auth.ValidateToken(cookie.Value, auth.KindRefresh); err == nil {
				if tokenID, err := claimTokenID(claims); err == nil {
					if err := h.redis.RevokeRefreshToken(r.Context(), tokenID); err != nil {
						log.Printf("logout: failed to revoke refresh token: %v", err)
					}
				}
			}
		}
	}
	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Sesión cerrada"})
}

// HandleMe processes GET /users/me, the identity check behind the session
// cookie.
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	user, err := h.db.GetUserByID(r.Context(), userID)
	if err != nil {
		h.dbError(w, "me", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
