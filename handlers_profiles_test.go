package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ironbrothers/ironbrothers/store"
)

func validProfileBody() map[string]any {
	return map[string]any{
		"apodo":         "La Roca",
		"frase":         "Sin dolor no hay gloria",
		"objetivo":      "Press banca 140kg antes de diciembre",
		"descripcion":   "Entreno cinco días a la semana.",
		"edad":          28,
		"peso_corporal": 82.5,
		"estatura":      178,
		"press_banca":   100,
		"sentadilla":    140,
		"peso_muerto":   160,
		"prensa":        300,
		"biceps":        45,
	}
}

func TestHandleInitProfile(t *testing.T) {
	userID := uuid.New()

	var created *store.Profile
	var activated bool
	mockStore := &store.MockStore{
		GetProfileFn: func(ctx context.Context, id uuid.UUID) (*store.Profile, error) {
			return nil, nil
		},
		CreateProfileFn: func(ctx context.Context, p *store.Profile) error {
			created = p
			return nil
		},
		SetUserActiveFn: func(ctx context.Context, id uuid.UUID, active bool) error {
			activated = active && id == userID
			return nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/profiles", validProfileBody())
	h.HandleInitProfile(rec, authedRequest(req, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil || created.UserID != userID {
		t.Fatal("expected profile created for the caller")
	}
	if created.Apodo != "La Roca" {
		t.Errorf("apodo = %q", created.Apodo)
	}
	if !activated {
		t.Error("expected account flipped active")
	}
}

func TestHandleInitProfile_AlreadyExists(t *testing.T) {
	mockStore := &store.MockStore{
		GetProfileFn: func(ctx context.Context, id uuid.UUID) (*store.Profile, error) {
			return &store.Profile{UserID: id}, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/profiles", validProfileBody())
	h.HandleInitProfile(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	want := "El perfil ya fue inicializado."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleInitProfile_Bounds(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value any
	}{
		{"apodo too short", "apodo", "Al"},
		{"frase too short", "frase", "Uff"},
		{"objetivo too short", "objetivo", "Ser"},
		{"edad below range", "edad", 5},
		{"edad above range", "edad", 120},
		{"peso corporal too low", "peso_corporal", 30},
		{"estatura too high", "estatura", 300},
		{"press banca too low", "press_banca", 5},
		{"sentadilla too high", "sentadilla", 500},
		{"peso muerto too low", "peso_muerto", 10},
		{"prensa too low", "prensa", 50},
		{"biceps too high", "biceps", 250},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := testHandlers(&store.MockStore{})

			body := validProfileBody()
			body[tc.field] = tc.value

			rec := httptest.NewRecorder()
			req := postJSON("/api/v1/profiles", body)
			h.HandleInitProfile(rec, authedRequest(req, uuid.New()))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleInitProfile_GraphemeBounds(t *testing.T) {
	// "ña" is three bytes but two characters; a 3-character minimum must
	// count characters, not bytes.
	h := testHandlers(&store.MockStore{GetProfileFn: func(ctx context.Context, id uuid.UUID) (*store.Profile, error) {
		return nil, nil
	}})

	body := validProfileBody()
	body["apodo"] = "Ñañ"

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/profiles", body)
	h.HandleInitProfile(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a 3-character accented apodo, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetMyProfile_NotFound(t *testing.T) {
	h := testHandlers(&store.MockStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
	h.HandleGetMyProfile(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	want := "Perfil no encontrado. Inicializa tu perfil primero."
	if got := decodeDetail(t, rec); got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestHandleUpdateProfile(t *testing.T) {
	userID := uuid.New()

	mockStore := &store.MockStore{
		UpdateProfileFn: func(ctx context.Context, p *store.Profile) (*store.Profile, error) {
			p.Aura = 120
			return p, nil
		},
	}

	h := testHandlers(mockStore)

	rec := httptest.NewRecorder()
	req := postJSON("/api/v1/profiles", validProfileBody())
	req.Method = http.MethodPut
	h.HandleUpdateProfile(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out store.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if out.Aura != 120 {
		t.Errorf("aura = %d, want the stored value", out.Aura)
	}
}
