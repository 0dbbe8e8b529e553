package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/models"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleDisplayName = "Google"

// googleUserInfo is the OIDC userinfo document.
type googleUserInfo struct {
	Sub        string  `json:"sub" validate:"required"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	Picture    *string `json:"picture" validate:"omitnil,url,startswith=https://"`
	Locale     *string `json:"locale"`
}

type GoogleProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	userInfoURL  string
	client       *http.Client
}

// NewGoogleProvider resolves the provider endpoints through OIDC discovery.
func NewGoogleProvider(ctx context.Context, cfg *config.GoogleConfig, client *http.Client) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), cfg.DiscoveryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	if provider.UserInfoEndpoint() == "" {
		return nil, fmt.Errorf("%w: %s does not advertise a userinfo endpoint", autherr.ErrConfiguration, cfg.DiscoveryURL)
	}

	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier:    provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		userInfoURL: provider.UserInfoEndpoint(),
		client:      client,
	}, nil
}

func (p *GoogleProvider) Name() string {
	return constants.ProviderGoogle
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = withClient(ctx, p.client)

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", exchangeError(googleDisplayName, err)
	}

	// The profile comes from userinfo, but a returned ID token must still be genuine
	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" {
		if _, err := p.verifier.Verify(ctx, rawIDToken); err != nil {
			return "", autherr.Validationf("verify %s ID token: %v", googleDisplayName, err)
		}
	}

	return token.AccessToken, nil
}

func (p *GoogleProvider) FetchUserProfile(ctx context.Context, accessToken string) (*models.UserProfile, error) {
	var info googleUserInfo
	if err := getJSON(ctx, p.client, googleDisplayName, p.userInfoURL, "application/json", accessToken, &info); err != nil {
		return nil, err
	}

	username := info.Sub
	if info.Email != nil && *info.Email != "" {
		username = *info.Email
	}

	return &models.UserProfile{
		ProviderUserID: info.Sub,
		Username:       username,
		Email:          info.Email,
		DisplayName:    info.Name,
		AvatarURL:      info.Picture,
		GivenName:      info.GivenName,
		FamilyName:     info.FamilyName,
		Locale:         info.Locale,
	}, nil
}
