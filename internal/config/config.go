package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("auth-relay version %s, commit %s, built at %s", version, commit, date)
}

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "AUTH_RELAY"

// EnvironmentProduction enables the production-only cookie attributes.
const EnvironmentProduction = "production"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	JWT       JWTConfig       `mapstructure:"jwt" yaml:"jwt"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Cookie    CookieConfig    `mapstructure:"cookie" yaml:"cookie"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	Environment     string        `mapstructure:"environment" yaml:"environment"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout" yaml:"upstream_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins" yaml:"allow_origins"`
	// RateLimit is the per-client request rate in requests per second; 0 disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// IsProduction reports whether the service runs with production cookie policy.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.Environment), EnvironmentProduction)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level             string `mapstructure:"level" yaml:"level"`
	Format            string `mapstructure:"format" yaml:"format"`
	Color             bool   `mapstructure:"color" yaml:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace" yaml:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path" yaml:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file" yaml:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console" yaml:"disable_console"`
}

// JWTConfig locates the signing key pair.
type JWTConfig struct {
	PrivateKeyPath string `mapstructure:"private_key_path" yaml:"private_key_path"`
	PublicKeyPath  string `mapstructure:"public_key_path" yaml:"public_key_path"`
	KeyID          string `mapstructure:"key_id" yaml:"key_id"`
}

type ProvidersConfig struct {
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
	Google GoogleConfig `mapstructure:"google" yaml:"google"`
}

type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	// Issuer is the "iss" of identity tokens minted for GitHub users.
	// The audience is the client id.
	Issuer   string `mapstructure:"issuer" yaml:"issuer"`
	TokenURL string `mapstructure:"token_url" yaml:"token_url"`
	APIURL   string `mapstructure:"api_url" yaml:"api_url"`
}

// GoogleConfig is optional; the provider is registered only when ClientID is set.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	Issuer       string `mapstructure:"issuer" yaml:"issuer"`
	RedirectURL  string `mapstructure:"redirect_url" yaml:"redirect_url"`
	DiscoveryURL string `mapstructure:"discovery_url" yaml:"discovery_url"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return strings.TrimSpace(g.ClientID) != ""
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain" yaml:"domain"`
	SameSite string `mapstructure:"same_site" yaml:"same_site"`
}

var defaults = map[string]any{
	"server.port":                    3000,
	"server.host":                    "0.0.0.0",
	"server.environment":             "development",
	"server.upstream_timeout":        "10s",
	"server.shutdown_timeout":        "5s",
	"server.allow_origins":           []string{},
	"server.rate_limit":              0,
	"server.rate_burst":              20,
	"logging.level":                  "info",
	"logging.format":                 "console",
	"logging.color":                  true,
	"logging.disable_stacktrace":     false,
	"logging.output_path":            "",
	"logging.append_to_file":         true,
	"logging.disable_console":        false,
	"jwt.private_key_path":           "",
	"jwt.public_key_path":            "",
	"jwt.key_id":                     "",
	"providers.github.client_id":     "",
	"providers.github.client_secret": "",
	"providers.github.issuer":        "",
	"providers.github.token_url":     "https://github.com/login/oauth/access_token",
	"providers.github.api_url":       "https://api.github.com",
	"providers.google.client_id":     "",
	"providers.google.client_secret": "",
	"providers.google.issuer":        "",
	"providers.google.redirect_url":  "",
	"providers.google.discovery_url": "https://accounts.google.com",
	"cookie.domain":                  "",
	"cookie.same_site":               "",
}

// InitFlags registers command line flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (defaults to ./config.yaml or /etc/auth-relay/config.yaml)")
	fs.Int("port", 0, "Port to listen on")
	fs.String("environment", "", "Deployment environment (development|production)")
}

// Load reads the configuration and validates it.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg, err := Read(fs)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds the configuration from defaults, an optional config file,
// AUTH_RELAY_* environment variables and the flags in fs, without validating it.
func Read(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to known keys
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/auth-relay")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %v", autherr.ErrConfiguration, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", autherr.ErrConfiguration, err)
	}

	if fs != nil {
		if fs.Changed("port") {
			cfg.Server.Port, _ = fs.GetInt("port")
		}
		if fs.Changed("environment") {
			cfg.Server.Environment, _ = fs.GetString("environment")
		}
	}

	return &cfg, nil
}

type requiredValue struct {
	value string
	key   string
}

// Validate reports the first missing required value as a configuration error.
func (c *Config) Validate() error {
	required := []requiredValue{
		{c.JWT.PrivateKeyPath, "jwt.private_key_path"},
		{c.JWT.PublicKeyPath, "jwt.public_key_path"},
		{c.JWT.KeyID, "jwt.key_id"},
		{c.Providers.GitHub.ClientID, "providers.github.client_id"},
		{c.Providers.GitHub.ClientSecret, "providers.github.client_secret"},
		{c.Providers.GitHub.Issuer, "providers.github.issuer"},
	}
	if c.Providers.Google.Enabled() {
		required = append(required,
			requiredValue{c.Providers.Google.ClientSecret, "providers.google.client_secret"},
			requiredValue{c.Providers.Google.Issuer, "providers.google.issuer"},
			requiredValue{c.Providers.Google.RedirectURL, "providers.google.redirect_url"},
		)
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required, please adjust the config or set the %s environment variable",
				autherr.ErrConfiguration, r.key, envName(r.key))
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d is out of range", autherr.ErrConfiguration, c.Server.Port)
	}

	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
