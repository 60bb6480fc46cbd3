package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenType   = errors.New("jwtx: unexpected token type")
)

// keySetVerifier checks signatures against a KeySet for one algorithm.
type keySetVerifier struct {
	alg    string
	keys   *KeySet
	issuer string
	aud    []string
}

// NewVerifier returns a Verifier that accepts tokens signed with alg by any
// key in keys, issued by issuer and addressed to one of aud. Empty issuer
// or audience are not enforced.
func NewVerifier(alg string, keys *KeySet, issuer string, aud []string) (Verifier, error) {
	switch alg {
	case AlgorithmEdDSA, AlgorithmES256:
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: ES256, EdDSA)", alg)
	}
	return &keySetVerifier{alg: alg, keys: keys, issuer: issuer, aud: aud}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *keySetVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{v.alg}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, v.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, ErrUnknownKID), errors.Is(err, ErrAlgMismatch):
			return Claims{}, err
		}
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

func (v *keySetVerifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}

	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}

	switch pub.(type) {
	case ed25519.PublicKey:
		if v.alg != AlgorithmEdDSA {
			return nil, ErrAlgMismatch
		}
	case *ecdsa.PublicKey:
		if v.alg != AlgorithmES256 {
			return nil, ErrAlgMismatch
		}
	default:
		return nil, ErrAlgMismatch
	}
	return pub, nil
}
