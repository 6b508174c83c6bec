package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ironbrothers/ironbrothers/auth"
	"github.com/ironbrothers/ironbrothers/config"
	"github.com/ironbrothers/ironbrothers/crypto"
	"github.com/ironbrothers/ironbrothers/email"
	"github.com/ironbrothers/ironbrothers/ratelimit"
	"github.com/ironbrothers/ironbrothers/store"
)

func testAuthConfig() auth.Config {
	return auth.Config{
		TokenKey:      []byte("test-secret-key-for-testing-only-32b"),
		SessionExpiry: 15 * time.Minute,
		RefreshExpiry: 14 * 24 * time.Hour,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{APIPrefix: "/api/v1"},
		Limits: config.LimitsConfig{
			MaxMessageGraphemes:   1024,
			MaxGroupSize:          12,
			SecondaryCooldownDays: 7,
			ChatHistoryLimit:      50,
		},
	}
}

// testHandlers builds handlers against a mock store, without Redis and with
// mail disabled. The council hub is live but empty.
func testHandlers(mockStore *store.MockStore) *Handlers {
	a := auth.New(testAuthConfig())
	enc, _ := crypto.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	invites, _ := crypto.NewInviteTokenGenerator([]byte("invite-test-key-invite-test-key!"), 7*24*time.Hour)
	return &Handlers{
		db:           mockStore,
		auth:         a,
		validator:    auth.NewValidator(6),
		hub:          NewHub(),
		encryptor:    enc,
		email:        email.New(email.Config{}),
		invites:      invites,
		loginLimiter: ratelimit.New(100, time.Minute),
		cfg:          testConfig(),
	}
}

func postJSON(path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON envelope: %v", err)
	}
	return body.Detail
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleLogin_Success(t *testing.T) {
	userID := uuid.New()
	email := "hermano@example.com"
	password := "secreta123"

	a := auth.New(testAuthConfig())
	hashed, _ := a.HashPassword(password)

	mockStore := &store.MockStore{
		GetUserByEmailFn: func(ctx context.Context, e string) (*store.User, error) {
			if e == email {
				return &store.User{ID: userID, Email: email, Name: "Hermano", Role: auth.RoleJugador}, nil
			}
			return nil, nil
		},
		GetCredentialFn: func(ctx context.Context, id uuid.UUID) (string, error) {
			return hashed, nil
		},
	}

	h := testHandlers(mockStore)
	h.auth = a

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postJSON("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user store.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.ID != userID {
		t.Errorf("expected user %s, got %s", userID, user.ID)
	}

	session := cookieByName(rec, sessionCookieName)
	if session == nil || session.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !session.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	refresh := cookieByName(rec, refreshCookieName)
	if refresh == nil || refresh.Value == "" {
		t.Fatal("expected refresh cookie")
	}
	if refresh.Path != "/api/v1/auth" {
		t.Errorf("refresh cookie path = %q, want /api/v1/auth", refresh.Path)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	email := "hermano@example.com"

	a := auth.New(testAuthConfig())
	hashed, _ := a.HashPassword("la-buena")

	mockStore := &store.MockStore{
		GetUserByEmailFn: func(ctx context.Context, e string) (*store.User, error) {
			return &store.User{ID: uuid.New(), Email: email}, nil
		},
		GetCredentialFn: func(ctx context.Context, id uuid.UUID) (string, error) {
			return hashed, nil
		},
	}

	h := testHandlers(mockStore)
	h.auth = a

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postJSON("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "la-mala",
	}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	want := "Email o contraseña incorrectos. Por favor, inténtalo de nuevo."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleLogin_UnknownEmail(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postJSON("/api/v1/auth/login", map[string]string{
		"email":    "nadie@example.com",
		"password": "loquesea",
	}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h := testHandlers(&store.MockStore{})
	h.loginLimiter = ratelimit.New(2, time.Minute)

	body := map[string]string{"email": "nadie@example.com", "password": "x"}
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, postJSON("/api/v1/auth/login", body))
	}

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postJSON("/api/v1/auth/login", body))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	want := "Demasiados intentos. Espera un momento."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleRegister_Success(t *testing.T) {
	var created *store.User

	mockStore := &store.MockStore{
		EmailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
		CreateUserFn: func(ctx context.Context, email, name, role, hashed string) (*store.User, error) {
			created = &store.User{ID: uuid.New(), Email: email, Name: name, Role: role}
			return created, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, postJSON("/api/v1/auth/register", map[string]string{
		"email":    "nuevo@example.com",
		"password": "secreta123",
		"name":     "Nuevo Hermano",
		"role":     auth.RoleJugador,
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if cookieByName(rec, sessionCookieName) == nil {
		t.Error("expected session cookie after register")
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	mockStore := &store.MockStore{
		EmailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, postJSON("/api/v1/auth/register", map[string]string{
		"email":    "repetido@example.com",
		"password": "secreta123",
		"name":     "Hermano",
		"role":     auth.RoleJugador,
	}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	want := "Este email ya está registrado. Inicia sesión o usa otro email."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleRegister_InvalidRole(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, postJSON("/api/v1/auth/register", map[string]string{
		"email":    "nuevo@example.com",
		"password": "secreta123",
		"name":     "Hermano",
		"role":     "arbitro",
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleRegister_AppliesPendingInvite(t *testing.T) {
	groupID := uuid.New()
	inviteID := uuid.New()
	var joinedGroup *uuid.UUID
	var markedUsed bool

	mockStore := &store.MockStore{
		EmailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
		CreateUserFn: func(ctx context.Context, email, name, role, hashed string) (*store.User, error) {
			return &store.User{ID: uuid.New(), Email: email, Name: name, Role: role}, nil
		},
		GetPendingInviteFn: func(ctx context.Context, email string) (*store.GroupInvite, error) {
			return &store.GroupInvite{ID: inviteID, GroupID: groupID, Email: email, Status: store.InvitePending}, nil
		},
		CountGroupMembersFn: func(ctx context.Context, gid uuid.UUID) (int, error) {
			return 3, nil
		},
		SetUserGroupFn: func(ctx context.Context, uid uuid.UUID, gid *uuid.UUID) error {
			joinedGroup = gid
			return nil
		},
		MarkInviteUsedFn: func(ctx context.Context, id, usedBy uuid.UUID) error {
			markedUsed = id == inviteID
			return nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, postJSON("/api/v1/auth/register", map[string]string{
		"email":    "invitado@example.com",
		"password": "secreta123",
		"name":     "Invitado",
		"role":     auth.RoleJugador,
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if joinedGroup == nil || *joinedGroup != groupID {
		t.Error("expected new account to join the invite's group")
	}
	if !markedUsed {
		t.Error("expected invite marked used")
	}

	var user store.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.GroupID == nil || *user.GroupID != groupID {
		t.Error("expected response user to carry the joined group")
	}
}

func TestHandleRefresh_MissingCookie(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	h.HandleRefresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleRefresh_RotatesPair(t *testing.T) {
	userID := uuid.New()

	mockStore := &store.MockStore{
		GetUserByIDFn: func(ctx context.Context, id uuid.UUID) (*store.User, error) {
			if id == userID {
				return &store.User{ID: userID, Email: "hermano@example.com"}, nil
			}
			return nil, nil
		},
	}

	h := testHandlers(mockStore)

	refreshTok, _, _, err := h.auth.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refreshTok})
	h.HandleRefresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	session := cookieByName(rec, sessionCookieName)
	refresh := cookieByName(rec, refreshCookieName)
	if session == nil || session.Value == "" {
		t.Fatal("expected fresh session cookie")
	}
	if refresh == nil || refresh.Value == "" {
		t.Fatal("expected rotated refresh cookie")
	}
	if refresh.Value == refreshTok {
		t.Error("refresh cookie was not rotated")
	}
}

func TestHandleRefresh_SessionTokenRejected(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	sessionTok, _, err := h.auth.GenerateSessionToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: sessionTok})
	h.HandleRefresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for session token at refresh, got %d", rec.Code)
	}
}

func TestHandleLogout_ClearsCookies(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	h.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	session := cookieByName(rec, sessionCookieName)
	if session == nil || session.MaxAge != -1 {
		t.Error("expected expired session cookie")
	}
	refresh := cookieByName(rec, refreshCookieName)
	if refresh == nil || refresh.MaxAge != -1 {
		t.Error("expected expired refresh cookie")
	}
}

func TestRequireSession(t *testing.T) {
	userID := uuid.New()
	h := testHandlers(&store.MockStore{})

	var gotUserID uuid.UUID
	protected := h.requireSession(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// No cookie
	rec := httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rec.Code)
	}

	// Valid session cookie
	tok, _, err := h.auth.GenerateSessionToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tok})
	protected(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid cookie, got %d", rec.Code)
	}
	if gotUserID != userID {
		t.Errorf("context user = %s, want %s", gotUserID, userID)
	}

	// Refresh token must not pass as a session token
	refreshTok, _, _, err := h.auth.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: refreshTok})
	protected(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token in session cookie, got %d", rec.Code)
	}
}
