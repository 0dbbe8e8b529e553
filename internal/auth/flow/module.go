package flow

import (
	"go.uber.org/fx"
)

var Module = fx.Module("flow",
	fx.Provide(NewController),
)
