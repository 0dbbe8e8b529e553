package tokens

import (
	"github.com/brizzai/auth-relay/internal/auth/keys"
	"go.uber.org/fx"
)

var Module = fx.Module("tokens",
	fx.Provide(
		func(km *keys.Manager) *Service { return NewService(km) },
	),
)
