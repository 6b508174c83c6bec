package main

import (
	"strings"

	"github.com/google/uuid"
)

// maskEmail masks an email address for logging, showing only first char and domain.
// Example: "ana.torres@example.com" -> "a***@example.com"
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return string(email[0]) + "***" + email[at:]
}

// shortID returns a truncated UUID string for logging (first 8 chars).
func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}
