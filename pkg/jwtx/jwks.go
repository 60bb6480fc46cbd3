package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
)

// JWK represents a public key in JSON Web Key format (RFC 7517). Only the
// OKP (Ed25519) and EC (P-256) members are modelled.
type JWK struct {
	Kty string `json:"kty"`           // "OKP" or "EC"
	Use string `json:"use,omitempty"` // always "sig" here
	Alg string `json:"alg,omitempty"` // "EdDSA" or "ES256"
	Kid string `json:"kid,omitempty"`

	Crv string `json:"crv,omitempty"` // "Ed25519" or "P-256"
	X   string `json:"x,omitempty"`   // public key (OKP) or x-coordinate (EC), base64url
	Y   string `json:"y,omitempty"`   // y-coordinate, EC only
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds an "OKP" JWK for an Ed25519 public key.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// NewES256JWK builds an "EC" JWK for a P-256 public key. Coordinates are
// left padded to the 32 byte field size as RFC 7518 requires.
func NewES256JWK(kid, use, alg string, pub *ecdsa.PublicKey) JWK {
	var x, y [32]byte
	pub.X.FillBytes(x[:])
	pub.Y.FillBytes(y[:])

	return JWK{
		Kty: "EC",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(x[:]),
		Y:   base64.RawURLEncoding.EncodeToString(y[:]),
	}
}

// PEM renders the public key as a PKIX PEM block, handy for pasting
// into jwt.io when debugging.
func (j JWK) PEM() (string, error) {
	publicKey, err := parseJWKToKey(j)
	if err != nil {
		return "", err
	}

	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
