package server

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/brizzai/auth-relay/internal/logger"
)

// Module provides the HTTP server and binds it to the application lifecycle
var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(func(lc fx.Lifecycle, s *Server, shutdowner fx.Shutdowner) {
		done := make(chan struct{})

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := s.Start(ctx); err != nil {
					return err
				}
				go func() {
					select {
					case err := <-s.Errors():
						logger.Error("HTTP server failed", zap.Error(err))
						_ = shutdowner.Shutdown(fx.ExitCode(1))
					case <-done:
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(done)
				return s.Stop(ctx)
			},
		})
	}),
)
