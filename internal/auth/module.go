package auth

import (
	"github.com/brizzai/auth-relay/internal/auth/flow"
	"github.com/brizzai/auth-relay/internal/auth/handlers"
	"github.com/brizzai/auth-relay/internal/auth/keys"
	"github.com/brizzai/auth-relay/internal/auth/providers"
	"github.com/brizzai/auth-relay/internal/auth/tokens"
	"go.uber.org/fx"
)

// Module provides the relay service and everything it depends on
var Module = fx.Module("auth",
	keys.Module,
	tokens.Module,
	providers.Module,
	flow.Module,
	fx.Provide(
		handlers.NewHandler,
		NewService,
	),
)
