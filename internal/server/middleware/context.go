package middleware

import (
	"context"
	"net"
	"net/http"
)

type contextKey struct{ name string }

var (
	principalKey = contextKey{"principal"}
	clientIPKey  = contextKey{"client_ip"}
)

// WithPrincipal returns a context with the authenticated principal's email set.
// Handlers downstream of the auth gate read it via GetPrincipal.
func WithPrincipal(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, principalKey, email)
}

// GetPrincipal returns the authenticated principal's email and true if set.
func GetPrincipal(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(principalKey).(string)
	return v, ok
}

// ClientIP is middleware that records the client IP in the request context,
// for the audit logger.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ctx := context.WithValue(r.Context(), clientIPKey, host)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP returns the client IP recorded by ClientIP, or "unknown".
func GetClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
