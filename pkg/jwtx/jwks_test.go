package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodePublicPEM(t *testing.T, pemStr string) any {
	t.Helper()

	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block, "PEM block should be valid")
	require.Equal(t, "PUBLIC KEY", block.Type)

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	return key
}

func TestJWK_PEM_Ed25519(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwk := NewEd25519JWK("test-key-id", "sig", AlgorithmEdDSA, publicKey)
	require.Equal(t, "OKP", jwk.Kty)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)

	parsed, ok := decodePublicPEM(t, pemStr).(ed25519.PublicKey)
	require.True(t, ok, "parsed key should be Ed25519")
	require.Equal(t, publicKey, parsed)
}

func TestJWK_PEM_ES256(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk := NewES256JWK("test-key-id", "sig", AlgorithmES256, &privateKey.PublicKey)
	require.Equal(t, "EC", jwk.Kty)
	require.Len(t, jwk.X, 43) // 32 bytes, unpadded base64url
	require.Len(t, jwk.Y, 43)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)

	parsed, ok := decodePublicPEM(t, pemStr).(*ecdsa.PublicKey)
	require.True(t, ok, "parsed key should be ECDSA")
	require.True(t, privateKey.PublicKey.Equal(parsed))
}

func TestJWK_PEM_Errors(t *testing.T) {
	t.Run("unsupported kty", func(t *testing.T) {
		_, err := JWK{Kty: "RSA", Kid: "k"}.PEM()
		require.ErrorContains(t, err, "unsupported kty")
	})

	t.Run("unsupported curve", func(t *testing.T) {
		_, err := JWK{Kty: "EC", Crv: "P-384", Kid: "k"}.PEM()
		require.ErrorContains(t, err, "unsupported EC curve")
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := JWK{Kty: "OKP", Crv: "Ed25519", X: "!!!"}.PEM()
		require.Error(t, err)
	})
}

func TestKeySet_ResetFromJWKS(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	require.NoError(t, ks.ResetFromJWKS(JWKS{Keys: []JWK{NewEd25519JWK("a", "sig", AlgorithmEdDSA, pub)}}))
	require.True(t, ks.IsReady())

	got, err := ks.Get("a")
	require.NoError(t, err)
	require.Equal(t, pub, got)

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}
