package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_RELAY_JWT_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("AUTH_RELAY_JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("AUTH_RELAY_JWT_KEY_ID", "key-1")
	t.Setenv("AUTH_RELAY_PROVIDERS_GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("AUTH_RELAY_PROVIDERS_GITHUB_CLIENT_SECRET", "gh-secret")
	t.Setenv("AUTH_RELAY_PROVIDERS_GITHUB_ISSUER", "https://issuer.example.com")
}

func TestRead_Defaults(t *testing.T) {
	cfg, err := Read(nil)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, 10*time.Second, cfg.Server.UpstreamTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://github.com/login/oauth/access_token", cfg.Providers.GitHub.TokenURL)
	assert.Equal(t, "https://api.github.com", cfg.Providers.GitHub.APIURL)
	assert.False(t, cfg.Providers.Google.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_RELAY_SERVER_ENVIRONMENT", "production")
	t.Setenv("AUTH_RELAY_COOKIE_SAME_SITE", "lax")
	t.Setenv("AUTH_RELAY_SERVER_UPSTREAM_TIMEOUT", "3s")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "key-1", cfg.JWT.KeyID)
	assert.Equal(t, "gh-secret", cfg.Providers.GitHub.ClientSecret)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, "lax", cfg.Cookie.SameSite)
	assert.Equal(t, 3*time.Second, cfg.Server.UpstreamTimeout)
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  allow_origins: ["https://app.example.com"]
jwt:
  private_key_path: /keys/private.pem
  public_key_path: /keys/public.pem
  key_id: file-key
providers:
  github:
    client_id: gh-id
    client_secret: gh-secret
    issuer: https://issuer.example.com
`), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--port", "9090", "--environment", "production"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, "file-key", cfg.JWT.KeyID)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
}

func TestRead_MissingExplicitConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := Read(fs)
	assert.ErrorIs(t, err, autherr.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 3000},
			JWT:    JWTConfig{PrivateKeyPath: "p", PublicKeyPath: "q", KeyID: "k"},
			Providers: ProvidersConfig{
				GitHub: GitHubConfig{ClientID: "id", ClientSecret: "secret", Issuer: "iss"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantEnv string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing private key", mutate: func(c *Config) { c.JWT.PrivateKeyPath = "" }, wantEnv: "AUTH_RELAY_JWT_PRIVATE_KEY_PATH"},
		{name: "missing key id", mutate: func(c *Config) { c.JWT.KeyID = " " }, wantEnv: "AUTH_RELAY_JWT_KEY_ID"},
		{name: "missing client secret", mutate: func(c *Config) { c.Providers.GitHub.ClientSecret = "" }, wantEnv: "AUTH_RELAY_PROVIDERS_GITHUB_CLIENT_SECRET"},
		{name: "missing issuer", mutate: func(c *Config) { c.Providers.GitHub.Issuer = "" }, wantEnv: "AUTH_RELAY_PROVIDERS_GITHUB_ISSUER"},
		{name: "google without redirect", mutate: func(c *Config) {
			c.Providers.Google = GoogleConfig{ClientID: "g", ClientSecret: "s", Issuer: "i"}
		}, wantEnv: "AUTH_RELAY_PROVIDERS_GOOGLE_REDIRECT_URL"},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantEnv: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantEnv == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, autherr.ErrConfiguration)
			if tt.wantEnv != "-" {
				assert.Contains(t, err.Error(), tt.wantEnv)
			}
		})
	}
}
