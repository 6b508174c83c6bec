package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testAuth() *Auth {
	return New(Config{
		TokenKey:      []byte("test-secret-key-for-testing-only-32b"),
		SessionExpiry: 15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	a := testAuth()

	hash, err := a.HashPassword("hierro-y-sudor")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !a.VerifyPassword("hierro-y-sudor", hash) {
		t.Error("expected correct password to verify")
	}
	if a.VerifyPassword("otra-cosa", hash) {
		t.Error("expected wrong password to fail")
	}
	if a.VerifyPassword("hierro-y-sudor", "$bcrypt$garbage") {
		t.Error("expected malformed hash to fail")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	a := testAuth()
	userID := uuid.New()

	token, expiresAt, err := a.GenerateSessionToken(userID)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	claims, err := a.ValidateToken(token, KindSession)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, claims.UserID)
	}
}

func TestRefreshTokenKindEnforced(t *testing.T) {
	a := testAuth()
	userID := uuid.New()

	token, tokenID, _, err := a.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	if tokenID == uuid.Nil {
		t.Fatal("expected non-nil token ID")
	}

	// A refresh token must not pass as a session token.
	if _, err := a.ValidateToken(token, KindSession); err != ErrWrongTokenKind {
		t.Errorf("expected ErrWrongTokenKind, got %v", err)
	}

	claims, err := a.ValidateToken(token, KindRefresh)
	if err != nil {
		t.Fatalf("ValidateToken(refresh) failed: %v", err)
	}
	if claims.ID != tokenID.String() {
		t.Errorf("expected jti %s, got %s", tokenID, claims.ID)
	}
}

func TestExpiredToken(t *testing.T) {
	a := New(Config{
		TokenKey:      []byte("test-secret-key-for-testing-only-32b"),
		SessionExpiry: -time.Minute,
	})

	token, _, err := a.GenerateSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	if _, err := a.ValidateToken(token, KindSession); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator(8)

	if err := v.Email("bro@ironbrothers.app"); err != nil {
		t.Errorf("expected valid email, got %v", err)
	}
	if err := v.Email("not-an-email"); err == nil {
		t.Error("expected invalid email to fail")
	}
	if err := v.Password("short"); err == nil {
		t.Error("expected short password to fail")
	}
	if err := v.Role("jugador"); err != nil {
		t.Errorf("expected jugador role to pass, got %v", err)
	}
	if err := v.Role("admin"); err == nil {
		t.Error("expected unknown role to fail")
	}
	if err := v.Name(" x "); err == nil {
		t.Error("expected too-short name to fail")
	}
}
