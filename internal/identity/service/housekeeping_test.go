package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.register(t, aliceInput("student"))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, h.store.OutstandingTokens().CreateOutstandingToken(ctx, domain.OutstandingToken{
		JTI:       "expired-jti",
		AccountID: reg.Member.ID,
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, h.store.SigningKeys().CreateSigningKey(ctx, domain.SigningKey{
		ID:                  "key-1",
		Kid:                 "kelas-old",
		Algorithm:           "EdDSA",
		PrivateKeyEncrypted: []byte("sealed"),
		CreatedAt:           now.Add(-48 * time.Hour),
		ExpiresAt:           now.Add(-time.Hour),
	}))

	hk := NewHousekeepingService(h.store, slog.New(slog.DiscardHandler), 0)
	require.Equal(t, time.Hour, hk.Interval)

	res := hk.Cleanup(ctx, now)
	require.Equal(t, CleanupResult{OutstandingTokens: 1, SigningKeys: 1}, res)

	// the live refresh token from registration survives
	_, err := h.tokens.Refresh(ctx, reg.Tokens.Refresh)
	require.NoError(t, err)

	require.Equal(t, CleanupResult{}, hk.Cleanup(ctx, now))
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)
	hk := NewHousekeepingService(h.store, slog.New(slog.DiscardHandler), time.Millisecond)

	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
