// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/auth-relay/internal/config"
	"github.com/stretchr/testify/require"
)

// TestKeyID is the kid used by key fixtures.
const TestKeyID = "test-key-1"

// GenerateKey returns a fresh 2048 bit RSA key.
func GenerateKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// EncodePrivateKey returns key as a PKCS8 PEM block.
func EncodePrivateKey(t testing.TB, key *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// EncodePublicKey returns key as an SPKI PEM block.
func EncodePublicKey(t testing.TB, key *rsa.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// WriteKeyPair writes a fresh key pair into a temp dir and returns a JWT config pointing at it.
func WriteKeyPair(t testing.TB) (*config.JWTConfig, *rsa.PrivateKey) {
	t.Helper()
	key := GenerateKey(t)
	dir := t.TempDir()

	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privatePath, EncodePrivateKey(t, key), 0o600))
	require.NoError(t, os.WriteFile(publicPath, EncodePublicKey(t, &key.PublicKey), 0o644))

	return &config.JWTConfig{
		PrivateKeyPath: privatePath,
		PublicKeyPath:  publicPath,
		KeyID:          TestKeyID,
	}, key
}
