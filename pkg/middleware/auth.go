// Package middleware provides HTTP middleware for request authentication.
package middleware

import (
	"net/http"
	"strings"

	"github.com/specstash/specstash/pkg/contextkeys"
	"github.com/specstash/specstash/pkg/httputil"
	"github.com/specstash/specstash/pkg/token"
)

// AuthMiddleware resolves the request owner from a bearer token. Tokens are
// verified by the gateway in front of this service; here they are only
// decoded to recover the sub claim.
type AuthMiddleware struct {
	optional bool // If true, allow requests without auth
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(optional bool) *AuthMiddleware {
	return &AuthMiddleware{optional: optional}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Format: "Bearer <token>"
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		owner, err := token.Decode(parts[1])
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid bearer token")
			return
		}

		ctx := contextkeys.WithOwner(r.Context(), owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwner extracts the authenticated owner from a request.
func GetOwner(r *http.Request) string {
	return contextkeys.GetOwner(r.Context())
}
