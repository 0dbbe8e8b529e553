// Package flow implements the OAuth relay state machine.
//
// A flow moves from NoFlow to Initialized when Init hands out a signed state
// token, and ends either Finalized (an identity token was minted) or Rejected.
// Nothing is kept server side between the two calls: the only durable form of
// an in-flight attempt is the state token held by the StateStore.
package flow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/providers"
	"github.com/brizzai/auth-relay/internal/auth/tokens"
	"github.com/brizzai/auth-relay/internal/logger"
	"go.uber.org/zap"
)

// StateStore keeps the signed state token between Init and Finalize.
// The HTTP layer implements it over the state cookie.
type StateStore interface {
	Load() (string, bool)
	Save(value string)
	Clear()
}

// Controller runs Init and Finalize for every registered provider.
type Controller struct {
	tokens    *tokens.Service
	providers *providers.Registry
	random    io.Reader
}

func NewController(tokenService *tokens.Service, registry *providers.Registry) *Controller {
	return &Controller{
		tokens:    tokenService,
		providers: registry,
		random:    rand.Reader,
	}
}

// Init starts a flow for provider and saves the signed state in store.
func (c *Controller) Init(ctx context.Context, provider, nonce string, store StateStore) (string, error) {
	if _, err := c.providers.Lookup(provider); err != nil {
		return "", err
	}

	token, err := c.newStateToken()
	if err != nil {
		return "", err
	}

	state, err := c.tokens.SignState(tokens.StateClaims{
		Provider: provider,
		Token:    token,
		Nonce:    nonce,
	})
	if err != nil {
		return "", err
	}

	store.Save(state)
	logger.Ctx(ctx).Debug("OAuth flow initialized", zap.String("provider", provider))
	return state, nil
}

// Finalize checks the submitted state against the stored one, exchanges code
// with the provider and returns a freshly minted identity token.
//
// The stored state is cleared before the provider is contacted, so a state
// token is consumed even when the exchange fails.
func (c *Controller) Finalize(ctx context.Context, provider, code, state string, store StateStore) (string, error) {
	log := logger.Ctx(ctx).With(zap.String("provider", provider))

	binding, err := c.providers.Lookup(provider)
	if err != nil {
		return "", err
	}

	cookie, ok := store.Load()
	if !ok {
		return "", reject(log, autherr.ReasonNotInitialized)
	}
	if state != cookie {
		return "", reject(log, autherr.ReasonStateMismatch)
	}

	verified := c.tokens.Verify(cookie)
	if !verified.Valid {
		return "", reject(log, autherr.ReasonInvalidState)
	}
	if claimed, ok := verified.Payload["provider"].(string); !ok || claimed != provider {
		return "", reject(log, autherr.ReasonProviderMismatch)
	}
	nonce, _ := verified.Payload["nonce"].(string)

	store.Clear()

	if binding.Issuer == "" || binding.Audience == "" {
		return "", fmt.Errorf("%w: issuer and audience must be configured for provider %s", autherr.ErrConfiguration, provider)
	}

	accessToken, err := binding.Provider.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("Code exchange failed", zap.Error(err))
		return "", err
	}

	profile, err := binding.Provider.FetchUserProfile(ctx, accessToken)
	if err != nil {
		log.Warn("Fetching user profile failed", zap.Error(err))
		return "", err
	}

	token, err := c.tokens.SignIdentity(tokens.NewIdentityClaims(profile, nonce), profile.ProviderUserID, binding.Issuer, binding.Audience)
	if err != nil {
		return "", err
	}

	log.Info("OAuth flow finalized", zap.String("sub", profile.ProviderUserID))
	return token, nil
}

func (c *Controller) newStateToken() (string, error) {
	buf := make([]byte, constants.StateTokenBytes)
	if _, err := io.ReadFull(c.random, buf); err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func reject(log *zap.Logger, reason string) error {
	log.Info("OAuth flow rejected", zap.String("reason", reason))
	return autherr.NewStateError(reason)
}
