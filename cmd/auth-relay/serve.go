package main

import (
	"github.com/brizzai/auth-relay/internal/auth"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/logger"
	"github.com/brizzai/auth-relay/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			app := fx.New(
				fx.Supply(cfg),
				logger.Module,
				auth.Module,
				server.Module,
				fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: l.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
				}),
			)
			if err := app.Err(); err != nil {
				return err
			}

			app.Run()
			return nil
		},
	}

	config.InitFlags(cmd.Flags())
	return cmd
}
