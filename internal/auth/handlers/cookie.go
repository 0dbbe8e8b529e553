package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/config"
)

// CookiePolicy holds the attributes of the state cookie.
// Secure, Domain and SameSite are only ever set in production so that
// local flows keep working over plain HTTP.
type CookiePolicy struct {
	Secure   bool
	Domain   string
	SameSite http.SameSite
}

func NewCookiePolicy(cfg *config.Config) CookiePolicy {
	if !cfg.Server.IsProduction() {
		return CookiePolicy{}
	}
	return CookiePolicy{
		Secure:   true,
		Domain:   strings.TrimSpace(cfg.Cookie.Domain),
		SameSite: parseSameSite(cfg.Cookie.SameSite),
	}
}

// parseSameSite drops unsupported values instead of defaulting them.
func parseSameSite(value string) http.SameSite {
	value = strings.TrimSpace(value)
	if !slices.Contains(constants.SupportedSameSite, value) {
		return http.SameSiteDefaultMode
	}
	switch value {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}

// cookieStore keeps the state token in the "auth" cookie scoped to the
// provider's finalize path.
type cookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	policy CookiePolicy
	path   string
}

func newCookieStore(w http.ResponseWriter, r *http.Request, policy CookiePolicy, provider string) *cookieStore {
	return &cookieStore{
		w:      w,
		r:      r,
		policy: policy,
		path:   constants.FinalizePath(provider),
	}
}

func (s *cookieStore) Load() (string, bool) {
	c, err := s.r.Cookie(constants.StateCookieName)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *cookieStore) Save(value string) {
	http.SetCookie(s.w, s.cookie(value, int(constants.StateTokenTTL.Seconds())))
}

func (s *cookieStore) Clear() {
	http.SetCookie(s.w, s.cookie("", -1))
}

func (s *cookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.StateCookieName,
		Value:    value,
		Path:     s.path,
		Domain:   s.policy.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.policy.Secure,
		SameSite: s.policy.SameSite,
	}
}
