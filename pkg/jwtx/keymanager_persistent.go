package jwtx

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/kelas/pkg/cryptox"
	"github.com/aussiebroadwan/kelas/pkg/idx"
)

// SigningKeyRecord is a signing key as persisted by a KeyStore. The private
// key is a PKCS8 PEM sealed with cryptox.EncryptPrivateKey.
type SigningKeyRecord struct {
	ID                  string
	Kid                 string
	Algorithm           string
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
	ExpiresAt           time.Time
}

// KeyStore is the persistence needed by NewPersistentKeyManager.
type KeyStore interface {
	// ListAllSigningKeys returns every unexpired key, retired or not, so
	// tokens signed before a retirement still verify.
	ListAllSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// ListActiveSigningKeys returns keys usable for new signatures.
	ListActiveSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

// PersistentKeyManagerOptions configures a KeyManager backed by a KeyStore.
type PersistentKeyManagerOptions struct {
	Store     KeyStore
	Algorithm string
	Issuer    string
	Audience  []string

	// NumKeys is the target number of active keys. Missing keys are
	// generated and stored on startup.
	NumKeys int

	// Lifetime sets expires_at on newly generated keys (default 30 days).
	// Housekeeping deletes keys past that point.
	Lifetime time.Duration
}

// NewPersistentKeyManager loads keys from the store so tokens survive a
// restart. Keys of another algorithm than opts.Algorithm are ignored.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("jwtx: Store is required for persistent key manager")
	}
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = 30 * 24 * time.Hour
	}
	numKeys := clampNumKeys(opts.NumKeys)

	km, err := newKeyManager(opts.Algorithm, opts.Issuer, opts.Audience)
	if err != nil {
		return nil, err
	}

	all, err := opts.Store.ListAllSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load keys: %w", err)
	}
	for _, rec := range all {
		if rec.Algorithm != opts.Algorithm {
			continue
		}
		signer, err := openRecord(rec)
		if err != nil {
			return nil, err
		}
		if err := km.KeySet.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add key %s to keyset: %w", rec.Kid, err)
		}
	}

	active, err := opts.Store.ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load active keys: %w", err)
	}
	for _, rec := range active {
		if rec.Algorithm != opts.Algorithm {
			continue
		}
		signer, err := openRecord(rec)
		if err != nil {
			return nil, err
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	for km.NumSigners() < numKeys {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		pemData, signer, err := generateKey(opts.Algorithm, kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate new key: %w", err)
		}

		sealed, err := cryptox.EncryptPrivateKey(pemData)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to encrypt new key: %w", err)
		}

		rec := SigningKeyRecord{
			ID:                  idx.MustNew().String(),
			Kid:                 kid,
			Algorithm:           opts.Algorithm,
			PrivateKeyEncrypted: sealed,
			CreatedAt:           now,
			ExpiresAt:           now.Add(opts.Lifetime),
		}
		if err := opts.Store.CreateSigningKey(ctx, rec); err != nil {
			return nil, fmt.Errorf("jwtx: failed to store new key: %w", err)
		}

		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	return km, nil
}

func openRecord(rec SigningKeyRecord) (Signer, error) {
	pemData, err := cryptox.DecryptPrivateKey(rec.PrivateKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to decrypt key %s: %w", rec.Kid, err)
	}

	signer, err := NewSigner(rec.Algorithm, rec.Kid, pemData)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to create signer for key %s: %w", rec.Kid, err)
	}
	return signer, nil
}
