package providers

import (
	"context"

	"github.com/brizzai/auth-relay/internal/auth/models"
)

// Provider defines the interface that all OAuth providers must implement
type Provider interface {
	// Name returns the route name of the provider, as carried in the state token
	Name() string

	// ExchangeCode exchanges an authorization code for an access token
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchUserProfile returns the canonical profile of the access token's owner
	FetchUserProfile(ctx context.Context, accessToken string) (*models.UserProfile, error)
}
