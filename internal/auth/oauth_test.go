package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brizzai/auth-relay/internal/auth/flow"
	"github.com/brizzai/auth-relay/internal/auth/handlers"
	"github.com/brizzai/auth-relay/internal/auth/keys"
	"github.com/brizzai/auth-relay/internal/auth/providers"
	"github.com/brizzai/auth-relay/internal/auth/tokens"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/testutil"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://issuer.example.com"
	testClientID = "client-1"
)

// newTestService wires the service against a fake GitHub served by httptest
func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()

	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login/oauth/access_token":
			_, _ = w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
		case "/user":
			_, _ = w.Write([]byte(`{"id":12345,"login":"u","email":"e@x.com","name":"N","avatar_url":"https://a/b"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(github.Close)

	cfg.Providers.GitHub = config.GitHubConfig{
		ClientID:     testClientID,
		ClientSecret: "secret",
		Issuer:       testIssuer,
		TokenURL:     github.URL + "/login/oauth/access_token",
		APIURL:       github.URL,
	}

	key := testutil.GenerateKey(t)
	km, err := keys.New(key, &key.PublicKey, testutil.TestKeyID)
	require.NoError(t, err)
	tokenService := tokens.NewService(km)

	registry, err := providers.NewRegistryFromConfig(context.Background(), cfg, github.Client())
	require.NoError(t, err)

	handler := handlers.NewHandler(cfg, flow.NewController(tokenService, registry), tokenService)
	return NewService(cfg, handler)
}

func TestRegisterRoutes(t *testing.T) {
	service := newTestService(t, &config.Config{})
	router := mux.NewRouter()
	service.RegisterRoutes(router)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/auth/init/github"},
		{http.MethodPost, "/v1/auth/finalize/github"},
		{http.MethodGet, "/v1/auth/certs"},
		{http.MethodGet, "/health"},
	}
	for _, route := range routes {
		var match mux.RouteMatch
		req := httptest.NewRequest(route.method, route.path, nil)
		assert.True(t, router.Match(req, &match), "route %s %s not registered", route.method, route.path)
	}
}

func TestHandler_MethodAndRouteErrors(t *testing.T) {
	h := newTestService(t, &config.Config{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/finalize/github", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHandler_RateLimited(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RateLimit = 1
	cfg.Server.RateBurst = 1
	h := newTestService(t, cfg).Handler()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestEndToEnd(t *testing.T) {
	srv := httptest.NewServer(newTestService(t, &config.Config{}).Handler())
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	// init
	resp, err := client.Get(srv.URL + "/v1/auth/init/github?nonce=" + url.QueryEscape(strings.Repeat("a", 32)))
	require.NoError(t, err)
	var initBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&initBody))
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// finalize, with the cookie sent back by the jar
	body := `{"code":"c1","state":"` + initBody["state"] + `"}`
	resp, err = client.Post(srv.URL+"/v1/auth/finalize/github", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var finalizeBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&finalizeBody))
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode, finalizeBody)

	// the identity token verifies against the published key set
	keySet := oidc.NewRemoteKeySet(oidc.ClientContext(context.Background(), srv.Client()), srv.URL+"/v1/auth/certs")
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID})
	idToken, err := verifier.Verify(context.Background(), finalizeBody["token"])
	require.NoError(t, err)
	assert.Equal(t, "12345", idToken.Subject)

	var claims struct {
		PreferredUsername string  `json:"preferred_username"`
		Email             string  `json:"email"`
		Picture           string  `json:"picture"`
		GivenName         *string `json:"given_name"`
	}
	require.NoError(t, idToken.Claims(&claims))
	assert.Equal(t, "u", claims.PreferredUsername)
	assert.Equal(t, "e@x.com", claims.Email)
	assert.Equal(t, "https://a/b", claims.Picture)
	assert.Nil(t, claims.GivenName)

	// the state was consumed, so replaying finalize is rejected
	resp, err = client.Post(srv.URL+"/v1/auth/finalize/github", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var replayBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&replayBody))
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication flow not initialized", replayBody["error_description"])
}
