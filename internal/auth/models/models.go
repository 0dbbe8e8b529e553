package models

// UserProfile is the provider-agnostic user shape every provider produces.
// Nullable fields are pointers and marshal as explicit nulls, never omitted.
type UserProfile struct {
	ProviderUserID string  `json:"provider_user_id"`
	Username       string  `json:"username"`
	Email          *string `json:"email"`
	DisplayName    *string `json:"display_name"`
	AvatarURL      *string `json:"avatar_url"`

	// Only filled by providers that know them (GitHub never does)
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	Locale     *string `json:"locale"`
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
