package providers

import (
	"context"
	"net/http"

	"github.com/brizzai/auth-relay/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(
		func(cfg *config.Config) *http.Client {
			return NewHTTPClient(cfg.Server.UpstreamTimeout)
		},
		func(cfg *config.Config, client *http.Client) (*Registry, error) {
			// bounds OIDC discovery at startup
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.UpstreamTimeout)
			defer cancel()
			return NewRegistryFromConfig(ctx, cfg, client)
		},
	),
)
