// Package client is the Go SDK for the Iron Brothers API. It owns the
// authenticated-session lifecycle: cookie transport, the 401 refresh-replay
// policy and the session state holder the UI reads.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind classifies an API failure for user-facing handling.
type Kind int

const (
	// KindUnknown is the fallback for anything the table below misses.
	KindUnknown Kind = iota
	// KindTimeout is a request that exceeded the client timeout.
	KindTimeout
	// KindConnection is a refused or unreachable server.
	KindConnection
	// KindNetwork is any other transport failure with no response.
	KindNetwork
	// KindValidation is a 400.
	KindValidation
	// KindUnauthorized is a 401.
	KindUnauthorized
	// KindNotFound is a 404.
	KindNotFound
	// KindConflict is a 409.
	KindConflict
	// KindUnprocessable is a 422.
	KindUnprocessable
	// KindServer is any 5xx.
	KindServer
)

// APIError is the one error type every client call returns. The server's
// {"detail": ...} envelope is decoded once at the transport boundary and
// carried here, never re-probed by callers.
type APIError struct {
	Kind       Kind
	StatusCode int
	// Detail is the server's detail string, empty on transport failures.
	Detail string
	cause  error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		if e.Detail != "" {
			return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	if e.cause != nil {
		return "api: " + e.cause.Error()
	}
	return "api: request failed"
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// UserMessage translates the failure into the Spanish message the UI shows.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		return "Datos inválidos. Verifica el formato de tu email."
	case KindUnauthorized:
		return "Email o contraseña incorrectos. Por favor, inténtalo de nuevo."
	case KindNotFound:
		return "Usuario no encontrado. Verifica tu email o regístrate."
	case KindConflict:
		return "Este email ya está registrado. Inicia sesión o usa otro email."
	case KindUnprocessable:
		return "Datos de entrada inválidos. Verifica todos los campos."
	case KindTimeout:
		return "La conexión tardó demasiado. Inténtalo de nuevo."
	case KindConnection:
		return "No se pudo conectar con el servidor. Verifica tu internet."
	case KindNetwork:
		return "Error de conexión. Verifica tu internet."
	default:
		return "Error en el servidor. Inténtalo más tarde."
	}
}

// statusKind maps a response status to its kind.
func statusKind(status int) Kind {
	switch {
	case status == 400:
		return KindValidation
	case status == 401:
		return KindUnauthorized
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 422:
		return KindUnprocessable
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// transportKind classifies a failure that produced no response.
func transportKind(err error) Kind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) {
		return KindConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}
	return KindNetwork
}
