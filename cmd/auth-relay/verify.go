package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var (
		jwksURL  string
		issuer   string
		audience string
	)

	cmd := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Verify an identity token against a published key set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := verifyIdentityToken(cmd.Context(), args[0], jwksURL, issuer, audience)
			if err != nil {
				pterm.Error.Println("Token is not valid")
				return err
			}

			pterm.Success.Println("Token is valid")
			return pterm.DefaultTable.WithHasHeader().WithData(claimsTable(claims)).Render()
		},
	}

	cmd.Flags().StringVar(&jwksURL, "jwks-url", "http://localhost:3000/v1/auth/certs", "URL of the JWKS document")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Expected token issuer")
	cmd.Flags().StringVar(&audience, "audience", "", "Expected token audience (skipped when empty)")
	_ = cmd.MarkFlagRequired("issuer")
	return cmd
}

func verifyIdentityToken(ctx context.Context, token, jwksURL, issuer, audience string) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	verifier := oidc.NewVerifier(issuer, keySet, &oidc.Config{
		ClientID:          audience,
		SkipClientIDCheck: audience == "",
	})

	idToken, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return claims, nil
}

func claimsTable(claims map[string]any) pterm.TableData {
	names := make([]string, 0, len(claims))
	for name := range claims {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{{"claim", "value"}}
	for _, name := range names {
		value, _ := json.Marshal(claims[name])
		data = append(data, []string{name, string(value)})
	}
	return data
}
