// Package keys owns the RSA key pair used to sign every token the service issues.
//
// A Manager is loaded once at startup and never mutated afterwards, so it can be
// shared by all request goroutines without locking.
package keys

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/logger"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Manager signs and verifies RS256 tokens with a single key pair.
type Manager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	keyID      string
}

// Load reads the PEM encoded key pair referenced by cfg.
// Any missing or unparsable value is a configuration error.
func Load(cfg *config.JWTConfig) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: jwt config is nil", autherr.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.PrivateKeyPath) == "" {
		return nil, fmt.Errorf("%w: path to JWT private key is not defined", autherr.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.PublicKeyPath) == "" {
		return nil, fmt.Errorf("%w: path to JWT public key is not defined", autherr.ErrConfiguration)
	}

	privatePEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %v", autherr.ErrConfiguration, err)
	}
	publicPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read public key: %v", autherr.ErrConfiguration, err)
	}

	// Accepts PKCS8 as well as PKCS1 private keys
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", autherr.ErrConfiguration, err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %v", autherr.ErrConfiguration, err)
	}

	m, err := New(privateKey, publicKey, cfg.KeyID)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded JWT signing key",
		zap.String("kid", m.keyID),
		zap.Int("bits", publicKey.N.BitLen()),
	)
	return m, nil
}

// New builds a Manager from parsed keys.
func New(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, keyID string) (*Manager, error) {
	if privateKey == nil || publicKey == nil {
		return nil, fmt.Errorf("%w: JWT key pair is incomplete", autherr.ErrConfiguration)
	}
	if strings.TrimSpace(keyID) == "" {
		return nil, fmt.Errorf("%w: JWT key ID is not defined", autherr.ErrConfiguration)
	}
	if !privateKey.PublicKey.Equal(publicKey) {
		return nil, fmt.Errorf("%w: JWT public key does not match the private key", autherr.ErrConfiguration)
	}

	return &Manager{
		privateKey: privateKey,
		publicKey:  publicKey,
		keyID:      keyID,
	}, nil
}

// KeyID returns the "kid" stamped on every signed token.
func (m *Manager) KeyID() string {
	return m.keyID
}

// Sign serialises claims into a compact JWS with header {alg: RS256, kid}.
func (m *Manager) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and decodes it into claims.
func (m *Manager) Verify(tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	options := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{constants.SigningAlgorithm}),
		jwt.WithExpirationRequired(),
		// rejects non-canonical base64url so each token has a single string form
		jwt.WithStrictDecoding(),
	}, opts...)

	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc, options...)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

func (m *Manager) keyFunc(token *jwt.Token) (any, error) {
	if kid, ok := token.Header["kid"]; ok && kid != m.keyID {
		return nil, fmt.Errorf("unknown key id %v", kid)
	}
	return m.publicKey, nil
}

// PublicJWK returns the public half of the key pair as a JWK.
func (m *Manager) PublicJWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       m.publicKey,
		KeyID:     m.keyID,
		Algorithm: constants.SigningAlgorithm,
		Use:       constants.KeyUse,
	}
}
