package api

import (
	"net/http"
	"strings"

	"tutor-track/internal/shared/auth"
	"tutor-track/internal/shared/util"
)

// Authenticate validates the bearer token and stashes the caller identity in
// the request context. Handlers extract it once and pass it explicitly into
// every core operation.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				util.WriteJSONError(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				util.WriteJSONError(w, "invalid Authorization format", http.StatusUnauthorized)
				return
			}

			ident, err := auth.VerifyToken(secret, parts[1])
			if err != nil {
				util.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireRole gates a handler to one role. Runs after Authenticate.
func RequireRole(role auth.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			util.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if ident.Role != role {
			util.WriteJSONError(w, "forbidden for role "+string(ident.Role), http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
