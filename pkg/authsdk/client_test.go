package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

// fakeService mints real JWTs so Session can read their expiry.
type fakeService struct {
	t        *testing.T
	km       *jwtx.KeyManager
	ttl      time.Duration
	refreshs atomic.Int32
	lastAuth atomic.Value
}

func newFakeService(t *testing.T, ttl time.Duration) (*fakeService, *SDKClient) {
	t.Helper()

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    "test",
		NumKeys:   1,
	})
	require.NoError(t, err)

	f := &fakeService{t: t, km: km, ttl: ttl}
	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)
	return f, NewSDKClient(srv.URL + "/")
}

func (f *fakeService) pair() TokenPair {
	sign := func(typ jwtx.TokenType, ttl time.Duration) string {
		tok, err := f.km.GetSigner().Sign(jwtx.NewClaims(jwtx.ClaimsParams{
			Type: typ, Subject: "acc-1", Issuer: "test", TTL: ttl,
		}))
		require.NoError(f.t, err)
		return tok
	}
	return TokenPair{
		Access:  sign(jwtx.TokenTypeAccess, f.ttl),
		Refresh: sign(jwtx.TokenTypeRefresh, time.Hour),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeService) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != req.Password2 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Status: StatusError,
				Errors: map[string][]string{"password2": {"Password fields didn't match."}},
			})
			return
		}
		writeJSON(w, http.StatusCreated, RegisterResponse{
			Status:  StatusSuccess,
			Message: "Student registered successfully",
			User:    RegisteredUser{ID: "acc-1", Username: req.Username, Role: req.Role},
			Tokens:  f.pair(),
		})
	})

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Status: StatusError,
				Errors: map[string][]string{NonFieldErrors: {"Unable to log in with provided credentials."}},
			})
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{
			Status: StatusSuccess,
			User:   LoginUser{ID: "acc-1", Username: req.Username, Role: "student"},
			Tokens: f.pair(),
		})
	})

	mux.HandleFunc("POST /token/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshs.Add(1)
		writeJSON(w, http.StatusOK, TokensResponse{Status: StatusSuccess, Tokens: f.pair()})
	})

	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth.Store(r.Header.Get("Authorization"))
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Status: StatusError, Message: "Authentication credentials were not provided."})
			return
		}
		writeJSON(w, http.StatusOK, ProfileResponse{
			Status:  StatusSuccess,
			Profile: Profile{ID: "acc-1", Username: "alice", Role: "student", IsActive: true},
		})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: StatusError, Message: "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Status: StatusSuccess, Message: "User logged out successfully"})
	})

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: "test"})
	})

	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, JWKSResponse(f.km.KeySet.PublicJWKS()))
	})

	return mux
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	_, client := newFakeService(t, time.Hour)

	t.Run("success", func(t *testing.T) {
		resp, session, err := client.Register(ctx, RegisterRequest{
			Username: "alice", Password: "x", Password2: "x", Role: "student",
		})
		require.NoError(t, err)
		require.Equal(t, "alice", resp.User.Username)
		require.NotEmpty(t, session.Tokens().Refresh)
	})

	t.Run("field errors", func(t *testing.T) {
		_, _, err := client.Register(ctx, RegisterRequest{Username: "alice", Password: "x", Password2: "y"})
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, []string{"Password fields didn't match."}, apiErr.Field("password2"))
		require.Contains(t, apiErr.Error(), "password2")
	})
}

func TestLoginFailure(t *testing.T) {
	_, client := newFakeService(t, time.Hour)

	_, _, err := client.Login(context.Background(), "alice", "wrong")
	require.True(t, IsStatus(err, http.StatusBadRequest))
	apiErr, _ := AsAPIError(err)
	require.Len(t, apiErr.Field(NonFieldErrors), 1)
}

func TestSessionUsesAccessToken(t *testing.T) {
	ctx := context.Background()
	f, client := newFakeService(t, time.Hour)

	_, session, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)
	require.Equal(t, "Bearer "+session.Tokens().Access, f.lastAuth.Load())
	require.Zero(t, f.refreshs.Load())
}

func TestSessionRefreshesNearExpiry(t *testing.T) {
	ctx := context.Background()
	// shorter than the refresh buffer, so every call refreshes first
	f, client := newFakeService(t, 10*time.Second)

	_, session, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	before := session.Tokens()

	_, err = session.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), f.refreshs.Load())
	require.NotEqual(t, before.Refresh, session.Tokens().Refresh)
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	_, client := newFakeService(t, time.Hour)

	session := client.NewSession(TokenPair{Access: "not-a-jwt"})
	_, err := session.Profile(context.Background())
	require.ErrorContains(t, err, "no refresh token")

	require.Error(t, session.Logout(context.Background()))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	_, client := newFakeService(t, time.Hour)

	_, session, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, session.Logout(ctx))
}

func TestPublicEndpoints(t *testing.T) {
	ctx := context.Background()
	_, client := newFakeService(t, time.Hour)

	health, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)

	jwks, err := client.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}

func TestErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).GetReadiness(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "Bad Gateway", apiErr.Message)
}
