package jwtx

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aussiebroadwan/kelas/pkg/cryptox"
)

const (
	defaultNumKeys = 3
	maxNumKeys     = 10
)

// KeyManager owns the signing keys of a running instance and the KeySet
// that publishes their public halves. Signing picks one of the active keys
// at random so every published kid stays in use.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures an ephemeral KeyManager.
type KeyManagerOptions struct {
	// Algorithm is EdDSA or ES256.
	Algorithm string

	// Issuer is the iss claim enforced on verification.
	Issuer string

	// Audience values enforced on verification. Empty disables the check.
	Audience []string

	// NumKeys is how many signing keys to generate (default 3, max 10).
	NumKeys int
}

// NewEphemeralKeyManager generates NumKeys in-memory keys. Tokens signed by
// them stop verifying once the process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	km, err := newKeyManager(opts.Algorithm, opts.Issuer, opts.Audience)
	if err != nil {
		return nil, err
	}

	for i := range clampNumKeys(opts.NumKeys) {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		_, signer, err := generateKey(opts.Algorithm, kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}

		if err := km.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d: %w", i+1, err)
		}
	}

	return km, nil
}

func newKeyManager(alg, issuer string, audience []string) (*KeyManager, error) {
	keyset := NewKeySet()

	verifier, err := NewVerifier(alg, keyset, issuer, audience)
	if err != nil {
		return nil, err
	}

	return &KeyManager{
		Verifier:  verifier,
		KeySet:    keyset,
		algorithm: alg,
	}, nil
}

func clampNumKeys(n int) int {
	if n <= 0 {
		return defaultNumKeys
	}
	return min(n, maxNumKeys)
}

// generateKey creates a fresh private key for alg and its Signer.
func generateKey(alg, kid string) ([]byte, Signer, error) {
	var (
		pemData []byte
		err     error
	)

	switch alg {
	case AlgorithmES256:
		pemData, err = cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		pemData, err = cryptox.GenerateEd25519Key()
	default:
		return nil, nil, fmt.Errorf("unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", alg, err)
	}

	signer, err := NewSigner(alg, kid, pemData)
	if err != nil {
		return nil, nil, err
	}
	return pemData, signer, nil
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady returns true if the KeyManager can both sign and verify.
func (km *KeyManager) IsReady() bool {
	return km.NumSigners() > 0 && km.KeySet.IsReady()
}

// GetSigner returns a randomly selected active signer, or nil if none.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner makes signer available for both signing and verification.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}
	if signer.Alg() != km.algorithm {
		return fmt.Errorf("signer algorithm %s does not match %s", signer.Alg(), km.algorithm)
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

// generateRandomKeyID returns "kelas-" followed by a 128-bit random token.
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return "kelas-" + token, nil
}
