package runner

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewRegistry, // *Registry
		),
		fx.Invoke(func(lc fx.Lifecycle, reg *Registry) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					reg.StopAll(ctx)
					return nil
				},
			})
		}),
	)
}
