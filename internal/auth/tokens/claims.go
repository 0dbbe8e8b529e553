package tokens

import (
	"github.com/brizzai/auth-relay/internal/auth/models"
	"github.com/golang-jwt/jwt/v5"
)

// StateClaims describe one in-flight authorization attempt.
type StateClaims struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// IdentityClaims is the payload of a minted identity token.
//
// Unlike jwt.RegisteredClaims the audience is a single string, and the
// profile claims have no omitempty so unknown values are encoded as null.
type IdentityClaims struct {
	Subject   string           `json:"sub"`
	Issuer    string           `json:"iss"`
	Audience  string           `json:"aud"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`

	Email             *string `json:"email"`
	Name              *string `json:"name"`
	GivenName         *string `json:"given_name"`
	FamilyName        *string `json:"family_name"`
	PreferredUsername string  `json:"preferred_username"`
	Picture           *string `json:"picture"`
	Locale            *string `json:"locale"`
	Nonce             string  `json:"nonce"`
}

// NewIdentityClaims maps a user profile onto the OpenID claim names.
func NewIdentityClaims(profile *models.UserProfile, nonce string) IdentityClaims {
	return IdentityClaims{
		Email:             profile.Email,
		Name:              profile.DisplayName,
		GivenName:         profile.GivenName,
		FamilyName:        profile.FamilyName,
		PreferredUsername: profile.Username,
		Picture:           profile.AvatarURL,
		Locale:            profile.Locale,
		Nonce:             nonce,
	}
}

func (c IdentityClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c IdentityClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c IdentityClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c IdentityClaims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c IdentityClaims) GetSubject() (string, error)                  { return c.Subject, nil }

func (c IdentityClaims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}
