package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/metrics"
	"github.com/aussiebroadwan/kelas/internal/identity/revocation"
	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
	"github.com/aussiebroadwan/kelas/pkg/slogx"

	_ "github.com/aussiebroadwan/kelas/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache revocation.Cache

	AccountService *service.AccountService
	AdminService   *service.AdminService
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	cache revocation.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// metrics sits directly on the mux so r.Pattern is set when it records
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Kelas Identity Service API
//	@version		0.1.0
//	@description	Account registration, login and profile management for the kelas learning platform.
//	@description
//	@description				Access and refresh tokens are JWTs signed with EdDSA or ES256 and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/kelas
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the access token and then rejects callers whose account
// was deactivated after the token was issued. Deleted accounts pass through
// so their handlers answer 404.
func (r *Router) authn() httpx.Middleware {
	verify := httpx.AuthnMiddleware(r.keys.Verifier)
	return func(next http.Handler) http.Handler {
		return verify(r.requireActive(next))
	}
}

func (r *Router) requireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id, ok := httpx.AccountID(req.Context())
		if !ok {
			next.ServeHTTP(w, req)
			return
		}

		a, err := r.store.Accounts().GetAccountByID(req.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			slogx.FromContext(req.Context()).Error("failed to load caller", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, msgInternal)
			return
		case !a.IsActive:
			httpx.WriteError(w, http.StatusUnauthorized, msgInactive)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.AccountService}

	// POST /register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + username to slow brute force
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("POST /token/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.authn(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Accounts: r.AccountService}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			r.authn(),
			httpx.RateLimitByAccount(limit),
		)
	}

	r.Mux.Handle("GET /profile", secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("POST /profile", secured(h.HandleUpdate, httpx.LenientLimit))
	r.Mux.Handle("DELETE /profile", secured(h.HandleDelete, httpx.LenientLimit))

	// password change verifies the old password, so it gets the strict profile
	r.Mux.Handle("POST /password/change", secured(h.HandlePasswordChange, httpx.StrictLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Admins: r.AdminService}

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /admin/accounts", admin(h.HandleCreate))
	r.Mux.Handle("POST /admin/accounts/{id}/activate", admin(h.HandleActivate))
	r.Mux.Handle("POST /admin/accounts/{id}/deactivate", admin(h.HandleDeactivate))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Health check endpoints - public rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.cache),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
