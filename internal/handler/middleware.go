package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/access"
)

type contextKey string

const sessionKey contextKey = "session"
const tokenKey contextKey = "gatewayToken"

// SessionFromContext returns the authenticated session placed by
// RequireAuth, or nil.
func SessionFromContext(ctx context.Context) *access.Session {
	s, _ := ctx.Value(sessionKey).(*access.Session)
	return s
}

// gatewayTokenFromContext returns the raw bearer token for handlers that
// operate on the token itself (logout, session resume).
func gatewayTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// RequireAuth validates the bearer token and resolves its session. The
// session (and the raw token) land in the request context.
func RequireAuth(gate *access.Gate, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			session, err := gate.Authenticate(r.Context(), token)
			if err != nil {
				handleServiceError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on a permission codename. Runs after
// RequireAuth; the profile comes from the gate's per-session cache.
func RequirePermission(gate *access.Gate, logger *zap.Logger, codename string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			user, err := gate.User(r.Context(), session)
			if err != nil {
				handleServiceError(w, logger, err)
				return
			}
			if !access.HasPermission(user, codename) {
				logger.Warn("permission denied",
					zap.String("username", session.Username),
					zap.String("permission", codename),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "missing permission: "+codename)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
