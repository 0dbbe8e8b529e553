// Package tokens mints and verifies the two kinds of JWT the service issues:
// short-lived OAuth state tokens and one hour identity tokens.
package tokens

import (
	"fmt"
	"time"

	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/keys"
	"github.com/brizzai/auth-relay/internal/logger"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Result is the outcome of Verify. Payload is nil unless Valid.
type Result struct {
	Valid   bool
	Payload jwt.MapClaims
}

// Service signs tokens with the key pair held by a keys.Manager.
type Service struct {
	keys  *keys.Manager
	clock func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a token service backed by km.
func NewService(km *keys.Manager, opts ...Option) *Service {
	s := &Service{
		keys:  km,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignState mints a state token valid for ten minutes. Registered claims
// other than iat and exp are cleared.
func (s *Service) SignState(claims StateClaims) (string, error) {
	now := s.clock()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(constants.StateTokenTTL)),
	}

	token, err := s.keys.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign state token: %w", err)
	}
	return token, nil
}

// SignIdentity mints an identity token valid for one hour.
func (s *Service) SignIdentity(claims IdentityClaims, subject, issuer, audience string) (string, error) {
	now := s.clock()
	claims.Subject = subject
	claims.Issuer = issuer
	claims.Audience = audience
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(constants.IdentityTokenTTL))

	token, err := s.keys.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return token, nil
}

// Verify checks signature and expiry. Callers only learn whether the token
// is valid; the failure cause is logged at debug level.
func (s *Service) Verify(token string) Result {
	claims := jwt.MapClaims{}
	if err := s.keys.Verify(token, claims, jwt.WithTimeFunc(s.clock)); err != nil {
		logger.Debug("Token verification failed", zap.Error(err))
		return Result{Valid: false}
	}
	return Result{Valid: true, Payload: claims}
}

// JWKS returns the public key set used to verify identity tokens.
func (s *Service) JWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{s.keys.PublicJWK()},
	}
}
