package jwtx

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported JWT signing algorithms
const (
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// keySigner signs with any PKCS8 key that golang-jwt has a method for.
type keySigner struct {
	kid    string
	method jwt.SigningMethod
	key    crypto.Signer
	jwk    JWK
}

// NewSigner parses a PKCS8 PEM private key and returns a Signer for the
// given algorithm. The key type has to match the algorithm.
func NewSigner(alg, kid string, pemKey []byte) (Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("jwtx: invalid PEM for %s key", alg)
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (PKCS8 required)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	s := &keySigner{kid: kid}
	switch alg {
	case AlgorithmEdDSA:
		key, ok := priv.(ed25519.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not Ed25519 private key")
		}
		s.method = jwt.SigningMethodEdDSA
		s.key = key
		s.jwk = NewEd25519JWK(kid, "sig", alg, key.Public().(ed25519.PublicKey))

	case AlgorithmES256:
		key, ok := priv.(*ecdsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not ECDSA private key")
		}
		s.method = jwt.SigningMethodES256
		s.key = key
		s.jwk = NewES256JWK(kid, "sig", alg, &key.PublicKey)

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: ES256, EdDSA)", alg)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *keySigner) Alg() string    { return s.method.Alg() }
func (s *keySigner) KID() string    { return s.kid }
func (s *keySigner) PublicJWK() JWK { return s.jwk }

// Sign serializes the claims into a compact JWT with the kid header set.
func (s *keySigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Validate checks the key matches what the algorithm expects.
func (s *keySigner) Validate() error {
	switch key := s.key.(type) {
	case ed25519.PrivateKey:
		if len(key) != ed25519.PrivateKeySize {
			return errors.New("jwtx: invalid Ed25519 private key size")
		}
	case *ecdsa.PrivateKey:
		if key == nil {
			return errors.New("jwtx: nil ECDSA key")
		}
		if name := key.Curve.Params().Name; name != "P-256" {
			return fmt.Errorf("jwtx: expected P-256 curve, got %s", name)
		}
	default:
		return errors.New("jwtx: nil signing key")
	}
	return nil
}
