package keys

import (
	"github.com/brizzai/auth-relay/internal/config"
	"go.uber.org/fx"
)

// Module provides the key manager; a load failure aborts application start
var Module = fx.Module("keys",
	fx.Provide(
		func(cfg *config.Config) (*Manager, error) {
			return Load(&cfg.JWT)
		},
	),
)
