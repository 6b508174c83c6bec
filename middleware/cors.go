// Package middleware provides HTTP middleware functions.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // Preflight cache duration in seconds
}

// CORS creates a middleware that handles credentialed CORS. Because the
// client authenticates with cookies, origins must be listed explicitly;
// a wildcard origin is never echoed back with credentials allowed.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Content-Type", "X-Requested-With"}
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 86400
	}

	methodsStr := strings.Join(cfg.AllowedMethods, ", ")
	headersStr := strings.Join(cfg.AllowedHeaders, ", ")
	maxAgeStr := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if origin != "" && !originAllowed(cfg.AllowedOrigins, origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				// Same-origin and non-browser clients proceed without
				// CORS headers.
				next.ServeHTTP(w, r)
				return
			}

			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methodsStr)
				w.Header().Set("Access-Control-Allow-Headers", headersStr)
				w.Header().Set("Access-Control-Max-Age", maxAgeStr)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if matchWildcardOrigin(a, origin) {
			return true
		}
	}
	return false
}

// matchWildcardOrigin matches subdomain wildcards:
// "https://*.example.com" matches "https://app.example.com"
// but not "https://example.com".
func matchWildcardOrigin(pattern, origin string) bool {
	if !strings.Contains(pattern, "*") {
		return false
	}

	patternParts := strings.SplitN(pattern, "://", 2)
	originParts := strings.SplitN(origin, "://", 2)
	if len(patternParts) != 2 || len(originParts) != 2 || patternParts[0] != originParts[0] {
		return false
	}

	patternHost, _, _ := strings.Cut(patternParts[1], ":")
	originHost, _, _ := strings.Cut(originParts[1], ":")

	if suffix, ok := strings.CutPrefix(patternHost, "*"); ok {
		return strings.HasSuffix(originHost, suffix) && len(originHost) > len(suffix)
	}
	return false
}

// CheckOrigin returns a function for WebSocket origin checking.
func CheckOrigin(allowedOrigins []string) func(*http.Request) bool {
	allowAll := len(allowedOrigins) == 0 ||
		(len(allowedOrigins) == 1 && allowedOrigins[0] == "*")

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		return originAllowed(allowedOrigins, origin)
	}
}
