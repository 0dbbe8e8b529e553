package constants

import "time"

const (
	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// SigningAlgorithm is the only algorithm used to sign and accept tokens
	SigningAlgorithm = "RS256"

	// KeyUse is the JWK "use" of the signing key
	KeyUse = "sig"
)

const (
	// StateCookieName holds the signed OAuth state between init and finalize
	StateCookieName = "auth"

	// StateTokenTTL bounds both the state token and its cookie
	StateTokenTTL = 10 * time.Minute

	// IdentityTokenTTL is the lifetime of minted identity tokens
	IdentityTokenTTL = time.Hour

	// StateTokenBytes is the entropy of the per-attempt state token
	StateTokenBytes = 32

	// MinNonceLength is the shortest nonce accepted by init
	MinNonceLength = 32
)

// Route paths
const (
	APIPrefix          = "/v1/auth"
	InitPathPrefix     = APIPrefix + "/init/"
	FinalizePathPrefix = APIPrefix + "/finalize/"
	CertsPath          = APIPrefix + "/certs"
	HealthPath         = "/health"
)

// Provider names, as carried in the "provider" state claim
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// GitHub endpoints
const (
	GitHubTokenURL     = "https://github.com/login/oauth/access_token"
	GitHubAPIURL       = "https://api.github.com"
	GitHubAcceptHeader = "application/vnd.github+json"
)

// SameSite values accepted from configuration
var SupportedSameSite = []string{"strict", "lax", "none"}

// FinalizePath returns the finalize route (and state cookie path) for a provider.
func FinalizePath(provider string) string {
	return FinalizePathPrefix + provider
}
