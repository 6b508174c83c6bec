// Package auth provides password hashing and session/refresh token handling
// for the Iron Brothers server.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongTokenKind     = errors.New("wrong token kind")
)

// Token kinds. A session token authenticates requests; a refresh token may
// only be exchanged for a new cookie pair at the refresh endpoint.
const (
	KindSession = "session"
	KindRefresh = "refresh"
)

// Config holds authentication configuration.
type Config struct {
	// HMAC signing key for both token kinds
	TokenKey []byte
	// Session token lifetime
	SessionExpiry time.Duration
	// Refresh token lifetime
	RefreshExpiry time.Duration
}

// Auth handles authentication operations.
type Auth struct {
	config Config
}

// New creates a new Auth instance.
func New(cfg Config) *Auth {
	if cfg.SessionExpiry == 0 {
		cfg.SessionExpiry = 15 * time.Minute
	}
	if cfg.RefreshExpiry == 0 {
		cfg.RefreshExpiry = 14 * 24 * time.Hour
	}
	return &Auth{config: cfg}
}

// Claims represents the JWT claims carried by both token kinds.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Kind   string    `json:"knd"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using Argon2id.
func (a *Auth) HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	// Parameters: time=1, memory=64MB, threads=4, keyLen=32
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	// Encode as $argon2id$salt$hash
	return fmt.Sprintf("$argon2id$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword verifies a password against an encoded hash.
func (a *Auth) VerifyPassword(password, encoded string) bool {
	parts := splitDollar(encoded)
	if len(parts) != 3 || parts[0] != "argon2id" {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return subtle.ConstantTimeCompare(hash, computed) == 1
}

// splitDollar splits "$argon2id$salt$hash" into ["argon2id", "salt", "hash"].
func splitDollar(encoded string) []string {
	if len(encoded) < 2 || encoded[0] != '$' {
		return nil
	}
	var result []string
	start := 1
	for i := 1; i < len(encoded); i++ {
		if encoded[i] == '$' {
			result = append(result, encoded[start:i])
			start = i + 1
		}
	}
	if start < len(encoded) {
		result = append(result, encoded[start:])
	}
	return result
}

// GenerateSessionToken generates a short-lived session JWT for a user.
func (a *Auth) GenerateSessionToken(userID uuid.UUID) (string, time.Time, error) {
	return a.generate(userID, KindSession, uuid.New(), a.config.SessionExpiry)
}

// GenerateRefreshToken generates a long-lived refresh JWT. The returned token
// ID must be recorded server-side; refresh is only honored for recorded IDs.
func (a *Auth) GenerateRefreshToken(userID uuid.UUID) (token string, tokenID uuid.UUID, expiresAt time.Time, err error) {
	tokenID = uuid.New()
	token, expiresAt, err = a.generate(userID, KindRefresh, tokenID, a.config.RefreshExpiry)
	return token, tokenID, expiresAt, err
}

func (a *Auth) generate(userID uuid.UUID, kind string, tokenID uuid.UUID, expiry time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(expiry)

	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "ironbrothers",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.config.TokenKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateToken validates a JWT of the given kind and returns its claims.
func (a *Auth) ValidateToken(tokenString, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.config.TokenKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}

	return claims, nil
}

// RefreshExpiry returns the configured refresh token lifetime.
func (a *Auth) RefreshExpiry() time.Duration {
	return a.config.RefreshExpiry
}

// SessionExpiry returns the configured session token lifetime.
func (a *Auth) SessionExpiry() time.Duration {
	return a.config.SessionExpiry
}
