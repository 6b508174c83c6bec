package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = User{
	ID:    "4dbd21a8-8cb0-4b66-ba81-a2032e84bcbc",
	Email: "hermano@example.com",
	Name:  "Hermano de Hierro",
	Role:  RoleJugador,
}

func newTestSession(t *testing.T, handler http.Handler) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// Auth flows run from the login root, where 401s never trigger a
	// silent refresh.
	c, err := New(srv.URL, WithLoginRootCheck(func() bool { return true }))
	require.NoError(t, err)
	return NewSession(NewAPI(c), nil)
}

func TestLoginSuccessAdoptsUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hermano@example.com", body["email"])
		json.NewEncoder(w).Encode(testUser)
	})

	s := newTestSession(t, mux)
	result := s.Login(context.Background(), "hermano@example.com", "secreta123")

	assert.True(t, result.Success)
	assert.Equal(t, "Inicio de sesión exitoso", result.Message)
	require.NotNil(t, s.User())
	assert.Equal(t, testUser.ID, s.User().ID)
}

func TestLoginWrongPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusUnauthorized, "Email o contraseña incorrectos. Por favor, inténtalo de nuevo.")
	})

	s := newTestSession(t, mux)
	result := s.Login(context.Background(), "hermano@example.com", "mala")

	assert.False(t, result.Success)
	assert.Equal(t, "Email o contraseña incorrectos. Por favor, inténtalo de nuevo.", result.Message)
	assert.Nil(t, s.User())
}

func TestLoginNeverThrows(t *testing.T) {
	// Every failure category resolves to success=false with its message.
	cases := []struct {
		name    string
		status  int
		message string
	}{
		{"validation", 400, "Datos inválidos. Verifica el formato de tu email."},
		{"unauthorized", 401, "Email o contraseña incorrectos. Por favor, inténtalo de nuevo."},
		{"not found", 404, "Usuario no encontrado. Verifica tu email o regístrate."},
		{"conflict", 409, "Este email ya está registrado. Inicia sesión o usa otro email."},
		{"unprocessable", 422, "Datos de entrada inválidos. Verifica todos los campos."},
		{"server", 500, "Error en el servidor. Inténtalo más tarde."},
		{"unknown", 418, "Error en el servidor. Inténtalo más tarde."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
				writeDetail(w, tc.status, "detalle del servidor")
			})

			s := newTestSession(t, mux)
			result := s.Login(context.Background(), "a@b.com", "x")

			assert.False(t, result.Success)
			assert.Equal(t, tc.message, result.Message)
			assert.Nil(t, s.User())
		})
	}
}

func TestLoginOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithLoginRootCheck(func() bool { return true }))
	require.NoError(t, err)
	s := NewSession(NewAPI(c), nil)

	result := s.Login(context.Background(), "a@b.com", "x")

	assert.False(t, result.Success)
	assert.Equal(t, "No se pudo conectar con el servidor. Verifica tu internet.", result.Message)
}

func TestRegisterSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(testUser)
	})

	s := newTestSession(t, mux)
	result := s.Register(context.Background(), "hermano@example.com", "secreta123", "Hermano de Hierro", RoleJugador)

	assert.True(t, result.Success)
	assert.Equal(t, "Registro exitoso", result.Message)
	require.NotNil(t, s.User())
}

func TestLogoutAlwaysClearsUser(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{"server accepts", http.StatusOK},
		{"server fails", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
				writeDetail(w, tc.status, "")
			})

			s := newTestSession(t, mux)
			u := testUser
			s.store.Set(&u)

			s.Logout(context.Background())
			assert.Nil(t, s.User())
		})
	}
}

func TestFetchUserFailureClearsUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusUnauthorized, "No autenticado")
	})

	s := newTestSession(t, mux)
	u := testUser
	s.store.Set(&u)

	s.FetchUser(context.Background())

	assert.Nil(t, s.User())
	assert.False(t, s.Loading())
}

func TestRefreshUserKeepsStaleUserOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusInternalServerError, "Error en el servidor. Inténtalo más tarde.")
	})

	s := newTestSession(t, mux)
	u := testUser
	s.store.Set(&u)

	s.RefreshUser(context.Background())

	require.NotNil(t, s.User())
	assert.Equal(t, testUser.ID, s.User().ID)
	assert.False(t, s.Loading())
}

func TestRefreshUserOfflineKeepsUser(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	s := NewSession(NewAPI(c), nil)
	u := testUser
	s.store.Set(&u)

	s.RefreshUser(context.Background())

	require.NotNil(t, s.User())
	assert.Equal(t, testUser.ID, s.User().ID)
}

func TestInitialLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testUser)
	})

	s := newTestSession(t, mux)
	assert.True(t, s.Loading())
	assert.Nil(t, s.User())

	s.FetchUser(context.Background())

	assert.False(t, s.Loading())
	require.NotNil(t, s.User())
	assert.Equal(t, testUser.Email, s.User().Email)
}
