package tokens

import (
	"context"
	"crypto"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/brizzai/auth-relay/internal/auth/keys"
	"github.com/brizzai/auth-relay/internal/auth/models"
	"github.com/brizzai/auth-relay/internal/testutil"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *keys.Manager) {
	t.Helper()
	key := testutil.GenerateKey(t)
	km, err := keys.New(key, &key.PublicKey, testutil.TestKeyID)
	require.NoError(t, err)
	return NewService(km, opts...), km
}

// decodeSegment returns the JSON object of a compact JWS segment without verifying anything
func decodeSegment(t *testing.T, token string, index int) map[string]any {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[index])
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSignState_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.SignState(StateClaims{Provider: "github", Token: strings.Repeat("ab", 32), Nonce: "n-1"})
	require.NoError(t, err)

	res := svc.Verify(token)
	require.True(t, res.Valid)
	assert.Equal(t, "github", res.Payload["provider"])
	assert.Equal(t, strings.Repeat("ab", 32), res.Payload["token"])
	assert.Equal(t, "n-1", res.Payload["nonce"])

	header := decodeSegment(t, token, 0)
	assert.Equal(t, "RS256", header["alg"])
	assert.Equal(t, testutil.TestKeyID, header["kid"])
}

func TestSignState_ExpiryAndNoAudience(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc, _ := newTestService(t, WithClock(func() time.Time { return now }))

	token, err := svc.SignState(StateClaims{Provider: "github", Token: "t", Nonce: "n"})
	require.NoError(t, err)

	payload := decodeSegment(t, token, 1)
	assert.EqualValues(t, now.Unix(), payload["iat"])
	assert.EqualValues(t, now.Unix()+600, payload["exp"])
	assert.NotContains(t, payload, "sub")
	assert.NotContains(t, payload, "iss")
	assert.NotContains(t, payload, "aud")
}

func TestSignIdentity_Claims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc, _ := newTestService(t, WithClock(func() time.Time { return now }))

	profile := &models.UserProfile{
		ProviderUserID: "12345",
		Username:       "octocat",
		DisplayName:    models.StringPtr("The Octocat"),
		AvatarURL:      models.StringPtr("https://avatars.example.com/u/1"),
	}
	token, err := svc.SignIdentity(NewIdentityClaims(profile, "nonce-1"), "12345", "https://issuer.example.com", "client-1")
	require.NoError(t, err)

	payload := decodeSegment(t, token, 1)
	assert.Equal(t, "12345", payload["sub"])
	assert.Equal(t, "https://issuer.example.com", payload["iss"])
	assert.Equal(t, "client-1", payload["aud"])
	assert.EqualValues(t, now.Unix(), payload["iat"])
	assert.EqualValues(t, now.Unix()+3600, payload["exp"])
	assert.Equal(t, "octocat", payload["preferred_username"])
	assert.Equal(t, "The Octocat", payload["name"])
	assert.Equal(t, "https://avatars.example.com/u/1", payload["picture"])
	assert.Equal(t, "nonce-1", payload["nonce"])

	for _, claim := range []string{"email", "given_name", "family_name", "locale"} {
		value, ok := payload[claim]
		assert.True(t, ok, "claim %s must be present", claim)
		assert.Nil(t, value, "claim %s must be null", claim)
	}
}

func TestVerify_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := now
	svc, _ := newTestService(t, WithClock(func() time.Time { return clock }))

	token, err := svc.SignState(StateClaims{Provider: "github", Token: "t", Nonce: "n"})
	require.NoError(t, err)

	clock = now.Add(9 * time.Minute)
	assert.True(t, svc.Verify(token).Valid)

	clock = now.Add(11 * time.Minute)
	res := svc.Verify(token)
	assert.False(t, res.Valid)
	assert.Nil(t, res.Payload)
}

func TestVerify_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	other, _ := newTestService(t)

	token, err := svc.SignState(StateClaims{Provider: "github", Token: "t", Nonce: "n"})
	require.NoError(t, err)
	foreign, err := other.SignState(StateClaims{Provider: "github", Token: "t", Nonce: "n"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tamperedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"provider":"google","token":"t","nonce":"n","exp":9999999999}`))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "abc.def"},
		{name: "tampered payload", token: parts[0] + "." + tamperedPayload + "." + parts[2]},
		{name: "truncated signature", token: parts[0] + "." + parts[1] + "." + parts[2][:10]},
		{name: "signed by another key", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Result{Valid: false}, svc.Verify(tt.token))
		})
	}
}

func TestVerify_RejectsAlteredLastCharacter(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.SignState(StateClaims{Provider: "github", Token: "t", Nonce: "n"})
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	prefix, last := token[:len(token)-1], token[len(token)-1]
	for _, c := range []byte(alphabet) {
		if c == last {
			continue
		}
		altered := prefix + string(c)
		assert.Equal(t, Result{Valid: false}, svc.Verify(altered), "last character %q", c)
	}
}

func TestJWKS(t *testing.T) {
	svc, _ := newTestService(t)

	raw, err := json.Marshal(svc.JWKS())
	require.NoError(t, err)

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Keys, 1)
	assert.Equal(t, "RSA", doc.Keys[0]["kty"])
	assert.Equal(t, testutil.TestKeyID, doc.Keys[0]["kid"])
	assert.Equal(t, "RS256", doc.Keys[0]["alg"])
	assert.Equal(t, "sig", doc.Keys[0]["use"])
}

func TestIdentityToken_VerifiesWithOIDC(t *testing.T) {
	svc, km := newTestService(t)

	profile := &models.UserProfile{ProviderUserID: "42", Username: "u"}
	token, err := svc.SignIdentity(NewIdentityClaims(profile, "nonce-42"), "42", "https://issuer.example.com", "client-1")
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{km.PublicJWK().Key}}
	verifier := oidc.NewVerifier("https://issuer.example.com", keySet, &oidc.Config{ClientID: "client-1"})

	idToken, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "42", idToken.Subject)
	assert.Equal(t, "nonce-42", idToken.Nonce)
	assert.Equal(t, []string{"client-1"}, idToken.Audience)
}
