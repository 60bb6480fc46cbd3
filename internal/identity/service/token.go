package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/metrics"
	"github.com/aussiebroadwan/kelas/internal/identity/revocation"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
	"github.com/aussiebroadwan/kelas/pkg/slogx"
)

// TokenService signs token pairs and keeps the refresh revocation list.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store

	// Revoked is an optional cache of revoked jtis. Nil means none.
	Revoked revocation.Cache

	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *TokenService) cache() revocation.Cache {
	if s.Revoked == nil {
		return revocation.Nop{}
	}
	return s.Revoked
}

// Issue signs a pair for a and records the refresh jti.
func (s *TokenService) Issue(ctx context.Context, a domain.Account) (domain.TokenPair, error) {
	return s.issue(ctx, s.Store, a, time.Now().UTC())
}

// issue records the refresh token through st, which may be a Tx.
func (s *TokenService) issue(ctx context.Context, st store.Store, a domain.Account, now time.Time) (domain.TokenPair, error) {
	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return domain.TokenPair{}, errors.New("no signing key available")
	}

	params := jwtx.ClaimsParams{
		Subject:  a.ID,
		Username: a.Username,
		Role:     string(a.Role),
		Issuer:   s.Issuer,
		Audience: s.Audience,
		Now:      now,
	}

	params.Type, params.TTL = jwtx.TokenTypeAccess, s.AccessTTL
	access, err := signer.Sign(jwtx.NewClaims(params))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	params.Type, params.TTL = jwtx.TokenTypeRefresh, s.RefreshTTL
	refreshClaims := jwtx.NewClaims(params)
	refresh, err := signer.Sign(refreshClaims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := st.OutstandingTokens().CreateOutstandingToken(ctx, domain.OutstandingToken{
		JTI:       refreshClaims.ID,
		AccountID: a.ID,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
		CreatedAt: now,
	}); err != nil {
		return domain.TokenPair{}, fmt.Errorf("record refresh token: %w", err)
	}

	metrics.TokenPairsIssuedTotal.Inc()
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// parseRefresh verifies the signature, expiry and type of a refresh token.
func (s *TokenService) parseRefresh(token string) (jwtx.Claims, error) {
	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeRefresh); err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// revokedInCache asks the cache first. Cache failures fall through to the
// database, which is authoritative.
func (s *TokenService) revokedInCache(ctx context.Context, jti string) bool {
	revoked, err := s.cache().IsRevoked(ctx, jti)
	if err != nil {
		slogx.FromContext(ctx).Warn("revocation cache lookup failed", slog.Any("error", err))
		return false
	}
	return revoked
}

func (s *TokenService) markRevoked(ctx context.Context, claims jwtx.Claims, now time.Time) {
	if err := s.cache().MarkRevoked(ctx, claims.ID, claims.ExpiresIn(now)); err != nil {
		slogx.FromContext(ctx).Warn("revocation cache write failed", slog.Any("error", err))
	}
}

// Refresh exchanges a refresh token for a new pair. The old jti is revoked
// and the new one recorded in the same transaction, so a refresh token can
// be used once.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	claims, err := s.parseRefresh(refresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if s.revokedInCache(ctx, claims.ID) {
		return domain.TokenPair{}, ErrInvalidToken
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ot, err := tx.OutstandingTokens().GetOutstandingToken(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if ot.AccountID != claims.Subject || !ot.Usable(now) {
			return ErrInvalidToken
		}

		a, err := tx.Accounts().GetAccountByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !a.IsActive {
			return ErrInvalidToken
		}

		if err := tx.OutstandingTokens().RevokeOutstandingToken(ctx, claims.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		pair, err = s.issue(ctx, tx, a, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			l.Error("failed to rotate refresh token", slog.Any("error", err))
		}
		return domain.TokenPair{}, err
	}

	metrics.TokensRevokedTotal.WithLabelValues(metrics.RevokeRotation).Inc()
	s.markRevoked(ctx, claims, now)
	return pair, nil
}

// Revoke blacklists a refresh token whoever owns it.
func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	return s.RevokeFor(ctx, "", refresh)
}

// RevokeFor blacklists a refresh token owned by accountID. It returns
// ErrInvalidToken when the token is malformed, expired, unknown, already
// revoked or owned by someone else. An empty accountID skips the owner check.
func (s *TokenService) RevokeFor(ctx context.Context, accountID, refresh string) error {
	now := time.Now().UTC()

	claims, err := s.parseRefresh(refresh)
	if err != nil {
		return err
	}
	if accountID != "" && claims.Subject != accountID {
		return ErrInvalidToken
	}

	if err := s.Store.OutstandingTokens().RevokeOutstandingToken(ctx, claims.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		slogx.FromContext(ctx).Error("failed to revoke refresh token", slog.Any("error", err))
		return err
	}

	metrics.TokensRevokedTotal.WithLabelValues(metrics.RevokeLogout).Inc()
	s.markRevoked(ctx, claims, now)
	return nil
}

// RevokeAll revokes every live refresh token of accountID.
func (s *TokenService) RevokeAll(ctx context.Context, accountID string) (int64, error) {
	return s.revokeAll(ctx, s.Store, accountID, time.Now().UTC(), metrics.RevokeDeactivation)
}

func (s *TokenService) revokeAll(ctx context.Context, st store.Store, accountID string, now time.Time, reason string) (int64, error) {
	n, err := st.OutstandingTokens().RevokeAllAccountTokens(ctx, accountID, now)
	if err != nil {
		return 0, err
	}
	metrics.TokensRevokedTotal.WithLabelValues(reason).Add(float64(n))
	return n, nil
}
