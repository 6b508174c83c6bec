package auth

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password too short")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidName  = errors.New("invalid name")
)

// Account roles. Jugadores receive missions and vote; espectadores only watch.
const (
	RoleJugador    = "jugador"
	RoleEspectador = "espectador"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validator checks registration input against configured minimums.
type Validator struct {
	minPasswordLength int
}

// NewValidator creates a Validator.
func NewValidator(minPasswordLength int) *Validator {
	if minPasswordLength == 0 {
		minPasswordLength = 8
	}
	return &Validator{minPasswordLength: minPasswordLength}
}

// Email checks the address shape. Normalization (lowercasing) is left to the
// caller so the stored value matches what was checked.
func (v *Validator) Email(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Password checks the configured minimum length.
func (v *Validator) Password(password string) error {
	if len(password) < v.minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Role checks that the role is one of the known account roles.
func (v *Validator) Role(role string) error {
	if role != RoleJugador && role != RoleEspectador {
		return ErrInvalidRole
	}
	return nil
}

// Name checks the display name.
func (v *Validator) Name(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 || len(trimmed) > 80 {
		return ErrInvalidName
	}
	return nil
}
