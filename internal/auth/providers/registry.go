package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/brizzai/auth-relay/internal/auth/autherr"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/logger"
	"go.uber.org/zap"
)

// Binding ties a provider to the issuer and audience of the identity tokens minted for its users.
type Binding struct {
	Provider Provider
	Issuer   string
	Audience string
}

// Registry maps provider names to their bindings. It is read-only once built.
type Registry struct {
	bindings map[string]Binding
}

func NewRegistry(bindings ...Binding) *Registry {
	r := &Registry{bindings: make(map[string]Binding, len(bindings))}
	for _, b := range bindings {
		r.bindings[b.Provider.Name()] = b
	}
	return r
}

// NewRegistryFromConfig registers GitHub and, when configured, Google.
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config, client *http.Client) (*Registry, error) {
	github := cfg.Providers.GitHub
	bindings := []Binding{{
		Provider: NewGitHubProvider(&github, client),
		Issuer:   github.Issuer,
		Audience: github.ClientID,
	}}

	if google := cfg.Providers.Google; google.Enabled() {
		provider, err := NewGoogleProvider(ctx, &google, client)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{
			Provider: provider,
			Issuer:   google.Issuer,
			Audience: google.ClientID,
		})
	}

	r := NewRegistry(bindings...)
	logger.Info("Registered OAuth providers", zap.Strings("providers", r.Names()))
	return r, nil
}

// Lookup returns the binding for name, or an error wrapping ErrUnknownProvider.
func (r *Registry) Lookup(name string) (Binding, error) {
	b, ok := r.bindings[name]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", autherr.ErrUnknownProvider, name)
	}
	return b, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
