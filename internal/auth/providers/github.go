package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/models"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const gitHubDisplayName = "GitHub"

// gitHubUser is the subset of GET /user the profile is built from.
type gitHubUser struct {
	ID        *int64  `json:"id" validate:"required"`
	Login     *string `json:"login" validate:"required"`
	Email     *string `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url" validate:"omitnil,url,startswith=https://"`
}

// Keys GitHub always sends, possibly as null.
var gitHubNullableKeys = []string{"email", "name", "avatar_url"}

func (u *gitHubUser) UnmarshalJSON(data []byte) error {
	type plain gitHubUser
	if err := json.Unmarshal(data, (*plain)(u)); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, key := range gitHubNullableKeys {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("missing key %q", key)
		}
	}
	return nil
}

type GitHubProvider struct {
	oauth2Config *oauth2.Config
	apiURL       string
	client       *http.Client
}

func NewGitHubProvider(cfg *config.GitHubConfig, client *http.Client) *GitHubProvider {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = constants.GitHubTokenURL
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = constants.GitHubAPIURL
	}

	return &GitHubProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:       github.Endpoint.AuthURL,
				DeviceAuthURL: github.Endpoint.DeviceAuthURL,
				TokenURL:      tokenURL,
				// client_id and client_secret travel in the request body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL: strings.TrimRight(apiURL, "/"),
		client: client,
	}
}

func (p *GitHubProvider) Name() string {
	return constants.ProviderGitHub
}

func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := p.oauth2Config.Exchange(withClient(ctx, p.client), code)
	if err != nil {
		return "", exchangeError(gitHubDisplayName, err)
	}
	return token.AccessToken, nil
}

func (p *GitHubProvider) FetchUserProfile(ctx context.Context, accessToken string) (*models.UserProfile, error) {
	var user gitHubUser
	if err := getJSON(ctx, p.client, gitHubDisplayName, p.apiURL+"/user", constants.GitHubAcceptHeader, accessToken, &user); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Debug("Fetched GitHub user", zap.Int64("id", *user.ID))

	return &models.UserProfile{
		ProviderUserID: strconv.FormatInt(*user.ID, 10),
		Username:       *user.Login,
		Email:          user.Email,
		DisplayName:    user.Name,
		AvatarURL:      user.AvatarURL,
	}, nil
}
