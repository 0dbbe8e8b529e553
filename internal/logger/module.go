package logger

import (
	"context"

	"github.com/brizzai/auth-relay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module installs the configured logger as the global logger
var Module = fx.Module("logger",
	fx.Provide(
		func(cfg *config.Config) (*zap.Logger, error) {
			if err := InitLogger(&cfg.Logging); err != nil {
				return nil, err
			}
			return GetLogger(), nil
		},
	),
	fx.Invoke(func(lc fx.Lifecycle, l *zap.Logger) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				// stdout/stderr sync errors are expected on some platforms
				_ = l.Sync()
				return nil
			},
		})
	}),
)
