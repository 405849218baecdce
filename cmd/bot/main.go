package main

import (
	"context"
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"spot_bot/internal/modules/binance"
	"spot_bot/internal/modules/bootstrap"
	"spot_bot/internal/modules/config"
	"spot_bot/internal/modules/health"
	telegram "spot_bot/internal/modules/telegram_bot"
	"spot_bot/internal/runner"
	"spot_bot/pkg/logger"
	"spot_bot/pkg/tracing"
)

const serviceName = "spot_bot"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.New(cfg.Log.Level)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		config.Module(),
		fx.Provide(newLogger),
		fx.Invoke(initTracing),
		binance.Module(),
		telegram.Module(),
		runner.Module(),
		health.Module(),
		bootstrap.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
