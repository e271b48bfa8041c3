// Package middleware provides the HTTP auth gate and request context helpers.
package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"todoapp/internal/httpapi"
	"todoapp/internal/security"
)

const bearerPrefix = "bearer "

// RequireAuth returns middleware that validates the Bearer access token before
// allowing a protected operation to proceed. A missing token is 401; an expired
// or malformed token is 403. The two are logged apart but not distinguishable
// to the caller. On success the principal is attached to the request context.
func RequireAuth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
				return
			}
			email, err := tokens.VerifyAccess(token)
			if err != nil {
				if errors.Is(err, security.ErrTokenExpired) {
					log.Printf("auth: expired access token on %s %s", r.Method, r.URL.Path)
				} else {
					log.Printf("auth: malformed access token on %s %s (possible tampering)", r.Method, r.URL.Path)
				}
				httpapi.WriteError(w, httpapi.Forbidden("Forbidden"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), email)))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
