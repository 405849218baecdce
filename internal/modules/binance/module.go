package binance

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	bn "spot_bot/internal/exchange/binance"
	"spot_bot/internal/modules/config"
	"spot_bot/internal/modules/health/service"
)

func NewClient(cfg *config.Config, log *zap.Logger) *bn.Client {
	return bn.NewClient(bn.Config{
		BaseURL:    cfg.Binance.BaseURL,
		WSURL:      cfg.Binance.WSURL,
		Timeout:    cfg.Binance.Timeout,
		RecvWindow: cfg.Binance.RecvWindow,
	}, log)
}

func NewStream(cfg *config.Config, log *zap.Logger) *bn.Stream {
	return bn.NewStream(cfg.Binance.WSURL, log)
}

// RunStream держит miniTicker-стрим по всем символам из конфига и пишет цены в health.
func RunStream(lc fx.Lifecycle, cfg *config.Config, s *bn.Stream, st *service.State, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			symbols := cfg.Symbols()
			if len(symbols) == 0 {
				log.Info("no symbols configured, price stream disabled")
				close(done)
				return nil
			}
			ticks := s.MiniTickers(ctx, symbols, st.SetWSConnected)
			go func() {
				defer close(done)
				for t := range ticks {
					st.SetPrice(t.Symbol, t.Price, t.Time)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

// Module поднимает REST-клиент Binance как exchange.Gateway и стример цен.
func Module() fx.Option {
	return fx.Module("binance",
		fx.Provide(
			NewClient,
			NewStream,
			func(c *bn.Client) exchange.Gateway { return c },
		),
		fx.Invoke(RunStream),
	)
}
