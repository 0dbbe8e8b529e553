package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewHTTPClient returns the client used for every outbound provider call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// withClient makes x/oauth2 and go-oidc use client for their requests.
func withClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// exchangeError classifies an error returned by oauth2.Config.Exchange.
func exchangeError(provider string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status < 200 || status > 299 {
			return autherr.NewUpstreamError(provider, "access token", status)
		}
		// 2xx carrying an OAuth error payload
		return autherr.Validationf("%s access token response: %s", provider, retrieveErr.ErrorCode)
	}
	return fmt.Errorf("%s access token request failed: %w", provider, err)
}

// getJSON performs an authenticated GET and decodes and validates the response into out.
func getJSON(ctx context.Context, client *http.Client, provider, url, accept, accessToken string, out any) error {
	bearer := oauth2.NewClient(withClient(ctx, client), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   constants.TokenType,
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := bearer.Do(req)
	if err != nil {
		return fmt.Errorf("%s API request failed: %w", provider, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return autherr.NewUpstreamError(provider, "API", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return autherr.Validationf("decode %s profile: %v", provider, err)
	}
	if err := validate.Struct(out); err != nil {
		return autherr.Validationf("%s profile: %v", provider, err)
	}
	return nil
}
