package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/kelas/pkg/jwtx"
	"github.com/aussiebroadwan/kelas/pkg/slogx"
)

const (
	msgNoCredentials = "Authentication credentials were not provided."
	msgInvalidToken  = "Given token not valid for any token type"
)

// AuthnMiddleware requires a valid access token in the Authorization
// header. Refresh tokens are rejected even when their signature is good.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(authz, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				writeBearerError(w, msgNoCredentials)
				return
			}

			claims, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, msgInvalidToken)
				return
			}

			if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
				log.Warn("non-access token presented as bearer", "token_type", claims.TokenType)
				writeBearerError(w, msgInvalidToken)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.With(ctx, "account_id", claims.Subject, "role", claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeBearerError answers 401 with an RFC 6750 challenge and the usual
// error envelope.
func writeBearerError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+msg+`"`)
	WriteError(w, http.StatusUnauthorized, msg)
}
