package httpx

import (
	"net/http"
	"slices"
)

const msgForbidden = "You do not have permission to perform this action."

// RequireRole lets the request through only when the caller's role claim
// is one of roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := AccountID(r.Context()); !ok {
				writeBearerError(w, msgNoCredentials)
				return
			}
			if !slices.Contains(roles, Role(r.Context())) {
				WriteError(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
