package telegram

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"spot_bot/internal/modules/config"
	"spot_bot/internal/notify"
	"spot_bot/internal/runner"
)

// NewNotifier: Telegram, если задан токен, иначе всё уходит в лог.
func NewNotifier(cfg *config.Config, log *zap.Logger) (runner.Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		log.Info("telegram is not configured, notifications go to the log")
		return notify.NewLog(log), nil
	}
	t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			NewNotifier,
		),
	)
}
