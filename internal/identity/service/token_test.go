package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/internal/identity/revocation"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
)

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	t.Run("rotates", func(t *testing.T) {
		pair, err := h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.NoError(t, err)
		require.NotEqual(t, reg.Tokens.Refresh, pair.Refresh)

		_, err = h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = h.tokens.Refresh(ctx, pair.Refresh)
		require.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := h.tokens.Refresh(ctx, reg.Tokens.Access)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := h.tokens.Refresh(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed but never recorded", func(t *testing.T) {
		claims := jwtx.NewClaims(jwtx.ClaimsParams{
			Type:    jwtx.TokenTypeRefresh,
			Subject: reg.Member.ID,
			Issuer:  "test-issuer",
			TTL:     time.Hour,
		})
		tok, err := h.tokens.KeyManager.GetSigner().Sign(claims)
		require.NoError(t, err)

		_, err = h.tokens.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("inactive account", func(t *testing.T) {
		pair, err := h.tokens.Issue(ctx, reg.Member.Account)
		require.NoError(t, err)
		require.NoError(t, h.store.Accounts().SetAccountActive(ctx, reg.Member.ID, false, time.Now().UTC()))
		t.Cleanup(func() {
			_ = h.store.Accounts().SetAccountActive(ctx, reg.Member.ID, true, time.Now().UTC())
		})

		_, err = h.tokens.Refresh(ctx, pair.Refresh)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	t.Run("twice", func(t *testing.T) {
		pair, err := h.tokens.Issue(ctx, reg.Member.Account)
		require.NoError(t, err)

		require.NoError(t, h.tokens.Revoke(ctx, pair.Refresh))
		require.ErrorIs(t, h.tokens.Revoke(ctx, pair.Refresh), ErrInvalidToken)
	})

	t.Run("leaves other tokens alone", func(t *testing.T) {
		a, err := h.tokens.Issue(ctx, reg.Member.Account)
		require.NoError(t, err)
		b, err := h.tokens.Issue(ctx, reg.Member.Account)
		require.NoError(t, err)

		require.NoError(t, h.tokens.Revoke(ctx, a.Refresh))
		_, err = h.tokens.Refresh(ctx, b.Refresh)
		require.NoError(t, err)
	})

	t.Run("foreign token", func(t *testing.T) {
		pair, err := h.tokens.Issue(ctx, reg.Member.Account)
		require.NoError(t, err)

		require.ErrorIs(t, h.tokens.RevokeFor(ctx, "someone-else", pair.Refresh), ErrInvalidToken)
		require.NoError(t, h.tokens.RevokeFor(ctx, reg.Member.ID, pair.Refresh))
	})

	t.Run("malformed", func(t *testing.T) {
		require.ErrorIs(t, h.tokens.Revoke(ctx, "x.y.z"), ErrInvalidToken)
		require.ErrorIs(t, h.tokens.Revoke(ctx, reg.Tokens.Access), ErrInvalidToken)
	})

	t.Run("all", func(t *testing.T) {
		for range 3 {
			_, err := h.tokens.Issue(ctx, reg.Member.Account)
			require.NoError(t, err)
		}
		n, err := h.tokens.RevokeAll(ctx, reg.Member.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(3))

		n, err = h.tokens.RevokeAll(ctx, reg.Member.ID)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestRevocationCache(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked tokens are cached", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache, err := revocation.NewRedis(ctx, revocation.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = cache.Close() })

		h := newHarness(t)
		h.tokens.Revoked = cache
		reg := h.register(t, aliceInput("student"))

		require.NoError(t, h.tokens.Revoke(ctx, reg.Tokens.Refresh))

		claims, err := h.tokens.KeyManager.Verifier.Verify(reg.Tokens.Refresh)
		require.NoError(t, err)
		revoked, err := cache.IsRevoked(ctx, claims.ID)
		require.NoError(t, err)
		require.True(t, revoked)

		ttl := mr.TTL("kelas:revoked:" + claims.ID)
		require.Greater(t, ttl, 59*time.Minute)
		require.LessOrEqual(t, ttl, time.Hour)

		_, err = h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rotation marks the old jti", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache, err := revocation.NewRedis(ctx, revocation.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = cache.Close() })

		h := newHarness(t)
		h.tokens.Revoked = cache
		reg := h.register(t, aliceInput("student"))

		_, err = h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.NoError(t, err)

		claims, err := h.tokens.KeyManager.Verifier.Verify(reg.Tokens.Refresh)
		require.NoError(t, err)
		require.True(t, mr.Exists("kelas:revoked:"+claims.ID))
	})

	t.Run("cache failure falls back to the database", func(t *testing.T) {
		h := newHarness(t)
		h.tokens.Revoked = brokenCache{}
		reg := h.register(t, aliceInput("student"))

		pair, err := h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.NoError(t, err)

		_, err = h.tokens.Refresh(ctx, reg.Tokens.Refresh)
		require.ErrorIs(t, err, ErrInvalidToken)

		require.NoError(t, h.tokens.Revoke(ctx, pair.Refresh))
		require.ErrorIs(t, h.tokens.Revoke(ctx, pair.Refresh), ErrInvalidToken)
	})
}

func TestIssueWithoutSigner(t *testing.T) {
	h := newHarness(t)
	h.tokens.KeyManager = &jwtx.KeyManager{KeySet: jwtx.NewKeySet()}

	_, err := h.tokens.Issue(context.Background(), aliceAccount())
	require.Error(t, err)
}
