package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironbrothers/ironbrothers/auth"
	"github.com/ironbrothers/ironbrothers/config"
	"github.com/ironbrothers/ironbrothers/crypto"
	"github.com/ironbrothers/ironbrothers/email"
	"github.com/ironbrothers/ironbrothers/media"
	"github.com/ironbrothers/ironbrothers/ratelimit"
	"github.com/ironbrothers/ironbrothers/redis"
	"github.com/ironbrothers/ironbrothers/store"
)

// Cookie names for the session pair.
const (
	sessionCookieName = "ib_session"
	refreshCookieName = "ib_refresh"
)

// Handlers holds dependencies for request handlers.
type Handlers struct {
	db           store.Store
	auth         *auth.Auth
	validator    *auth.Validator
	redis        *redis.Client
	hub          *Hub
	encryptor    *crypto.Encryptor
	email        *email.Service
	invites      *crypto.InviteTokenGenerator
	media        *media.Processor
	loginLimiter *ratelimit.Limiter
	cfg          *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db store.Store, a *auth.Auth, v *auth.Validator, rdb *redis.Client,
	hub *Hub, enc *crypto.Encryptor, emailSvc *email.Service,
	invites *crypto.InviteTokenGenerator, mediaProc *media.Processor,
	limiter *ratelimit.Limiter, cfg *config.Config) *Handlers {
	return &Handlers{
		db:           db,
		auth:         a,
		validator:    v,
		redis:        rdb,
		hub:          hub,
		encryptor:    enc,
		email:        emailSvc,
		invites:      invites,
		media:        mediaProc,
		loginLimiter: limiter,
		cfg:          cfg,
	}
}

// ctxKey is the context key type for request-scoped values.
type ctxKey int

const ctxKeyUserID ctxKey = iota

// userIDFromContext returns the authenticated user ID set by requireSession.
func userIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("handlers: failed to encode response: %v", err)
		}
	}
}

// errorBody is the envelope every non-2xx response carries.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeError writes the {"detail": ...} error envelope.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// decodeJSON decodes a request body, rejecting unknown garbage with 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Cuerpo de la petición inválido")
		return false
	}
	return true
}

// clientIP extracts the caller's address for rate limiting.
func (h *Handlers) clientIP(r *http.Request) string {
	if h.cfg.Server.UseXForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireSession wraps a handler with session-cookie authentication.
// The authenticated user ID lands in the request context.
func (h *Handlers) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "No autenticado")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, userID)))
	}
}

// sessionUser validates the session cookie and returns its user ID.
func (h *Handlers) sessionUser(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return uuid.Nil, false
	}
	claims, err := h.auth.ValidateToken(cookie.Value, auth.KindSession)
	if err != nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// setAuthCookies issues the session/refresh cookie pair.
func (h *Handlers) setAuthCookies(w http.ResponseWriter, session string, sessionExp time.Time, refresh string, refreshExp time.Time) {
	prefix := h.cfg.Server.APIPrefix
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session,
		Path:     prefix,
		Expires:  sessionExp,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	// The refresh cookie only travels to the auth endpoints.
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refresh,
		Path:     prefix + "/auth",
		Expires:  refreshExp,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookies expires both cookies.
func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	prefix := h.cfg.Server.APIPrefix
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     prefix,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     prefix + "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// issueSession generates and sets a fresh cookie pair for a user, recording
// the refresh token ID in the allowlist when Redis is enabled.
func (h *Handlers) issueSession(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) error {
	sessionTok, sessionExp, err := h.auth.GenerateSessionToken(userID)
	if err != nil {
		return err
	}
	refreshTok, tokenID, refreshExp, err := h.auth.GenerateRefreshToken(userID)
	if err != nil {
		return err
	}
	if h.redis != nil {
		if err := h.redis.SaveRefreshToken(ctx, userID, tokenID, h.auth.RefreshExpiry()); err != nil {
			return err
		}
	}
	h.setAuthCookies(w, sessionTok, sessionExp, refreshTok, refreshExp)
	return nil
}

// dbError logs a storage failure and answers with the generic 500 envelope.
func (h *Handlers) dbError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Error en el servidor. Inténtalo más tarde.")
}

var errNoGroup = errors.New("user has no group")

// groupOf resolves the caller's group, answering the HTTP error itself when
// the user is missing or groupless.
func (h *Handlers) groupOf(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (uuid.UUID, error) {
	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		h.dbError(w, "groupOf", err)
		return uuid.Nil, err
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return uuid.Nil, errors.New("user not found")
	}
	if user.GroupID == nil {
		writeError(w, http.StatusBadRequest, "No perteneces a ningún grupo")
		return uuid.Nil, errNoGroup
	}
	return *user.GroupID, nil
}
