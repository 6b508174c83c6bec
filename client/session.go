package client

import (
	"context"
	"log"
	"sync"
)

// AuthResult is the outcome of a login or register call. These methods never
// return an error: every failure lands here as success=false with the
// user-facing message.
type AuthResult struct {
	Success bool
	Message string
}

// Store holds the current user. Implementations must be safe for concurrent
// reads; the Session is the only writer.
type Store interface {
	Get() *User
	Set(u *User)
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	user *User
}

func (s *MemoryStore) Get() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemoryStore) Set(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Session is the state holder behind the UI: the current user (or nil) and
// a loading flag. All mutations go through its methods.
type Session struct {
	api   *API
	store Store

	mu      sync.RWMutex
	loading bool
}

// NewSession creates a session holder. A nil store gets a MemoryStore. The
// session starts loading until the first FetchUser resolves.
func NewSession(api *API, store Store) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{
		api:     api,
		store:   store,
		loading: true,
	}
}

// User returns the current user, nil when signed out.
func (s *Session) User() *User {
	return s.store.Get()
}

// Loading reports whether an identity fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// FetchUser resolves the identity behind the cookie. Failure signs the user
// out locally without calling the server. The loading flag always clears,
// whatever the outcome.
func (s *Session) FetchUser(ctx context.Context) {
	defer s.setLoading(false)

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		log.Printf("session: fetch user: %v", err)
		s.store.Set(nil)
		return
	}
	s.store.Set(user)
}

// Login authenticates and adopts the returned user. When the server answers
// without a payload, the identity endpoint fills the gap.
func (s *Session) Login(ctx context.Context, email, password string) AuthResult {
	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return AuthResult{Success: false, Message: userMessage(err)}
	}

	if user == nil || user.ID == "" {
		if fetched, err := s.api.GetCurrentUser(ctx); err == nil {
			user = fetched
		}
	}
	s.store.Set(user)
	return AuthResult{Success: true, Message: "Inicio de sesión exitoso"}
}

// Register creates an account and signs it in, with the same contract as
// Login.
func (s *Session) Register(ctx context.Context, email, password, name, role string) AuthResult {
	user, err := s.api.Register(ctx, email, password, name, role)
	if err != nil {
		return AuthResult{Success: false, Message: userMessage(err)}
	}

	if user == nil || user.ID == "" {
		if fetched, err := s.api.GetCurrentUser(ctx); err == nil {
			user = fetched
		}
	}
	s.store.Set(user)
	return AuthResult{Success: true, Message: "Registro exitoso"}
}

// Logout tells the server best-effort and unconditionally clears the user.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("session: logout: %v", err)
	}
	s.store.Set(nil)
}

// RefreshUser re-fetches the identity after side-effecting actions, but
// keeps the stale user on failure: a transient error must not sign the user
// out.
func (s *Session) RefreshUser(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		log.Printf("session: refresh user: %v", err)
		return
	}
	s.store.Set(user)
}

// userMessage extracts the Spanish user-facing message from any client error.
func userMessage(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.UserMessage()
	}
	return "Error de conexión. Verifica tu internet."
}
