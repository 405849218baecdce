package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"spot_bot/internal/models"
	"spot_bot/internal/modules/config"
	"spot_bot/internal/modules/health/service"
	"spot_bot/internal/runner"
)

type Starter interface {
	Start(ctx context.Context, cfg models.StrategyConfig) error
}

// Autostart запускает стратегии с autostart: true. Ошибка одного символа не мешает остальным.
func Autostart(ctx context.Context, cfg *config.Config, s Starter, log *zap.Logger) int {
	started := 0
	for _, entry := range cfg.Strategies {
		if !entry.Autostart {
			continue
		}
		sc, err := cfg.StrategyConfig(entry.Symbol)
		if err != nil {
			log.Error("autostart config", zap.String("symbol", entry.Symbol), zap.Error(err))
			continue
		}
		if err := s.Start(ctx, sc); err != nil {
			log.Error("autostart failed", zap.String("symbol", entry.Symbol), zap.Error(err))
			continue
		}
		started++
	}
	return started
}

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(r *runner.Registry) Starter { return r },
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s Starter, st *service.State, log *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// старт стратегий ходит в сеть с ретраями, не держим fx OnStart
					go func() {
						n := Autostart(ctx, cfg, s, log)
						log.Info("autostart done", zap.Int("started", n))
						st.SetReady(true)
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
