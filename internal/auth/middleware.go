package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/voluntapp/voluntapp/internal/policy"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type contextKey string

const (
	userIDKey contextKey = "auth.userID"
	roleKey   contextKey = "auth.role"
)

// UserIDFrom returns the authenticated user id, or "" when unauthenticated.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RolesFrom returns the authenticated user's roles for policy checks.
func RolesFrom(ctx context.Context) []policy.Role {
	role, _ := ctx.Value(roleKey).(string)
	if role == "" {
		return nil
	}
	return []policy.Role{policy.Role(role)}
}

type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth rejects requests without a valid bearer token and injects the
// user identity into the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			jsonutil.WriteErrorJSON(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := m.service.ParseToken(r.Context(), token)
		if err != nil {
			jsonutil.WriteErrorJSON(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
