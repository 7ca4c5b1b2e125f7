package server

import (
	"context"
	"net/http"
	"strings"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

// RequireAuth is middleware that validates a Bearer access token
func (s *Server) RequireAuth() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONMessage(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONMessage(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := s.accounts.Authenticate(parts[1])
			if err != nil {
				msg := "Invalid token"
				if crmerrors.Is(err, crmerrors.ErrTokenExpired) {
					msg = "Token expired"
				}
				writeJSONMessage(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserIDFromContext returns the authenticated user ID set by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok && id != ""
}
