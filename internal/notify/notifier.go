package notify

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"spot_bot/internal/models"
)

// Telegram: пассивный нотифайер: результаты ордеров и аварийные остановки.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	log    *zap.Logger
}

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{bot: b, chatID: chatID, log: log.Named("telegram")}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	// не держим цикл стратегии на сетевом вызове
	go func() {
		if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
			t.log.Warn("send failed", zap.Error(err))
		}
	}()
}

func (t *Telegram) OrderPlaced(_ context.Context, symbol string, rec models.OrderRecord) {
	t.Send(FormatOrder(symbol, rec))
}

func (t *Telegram) StrategyStopped(_ context.Context, symbol, reason string) {
	t.Send(FormatStop(symbol, reason))
}

// FormatOrder renders one order outcome as a chat message.
func FormatOrder(symbol string, rec models.OrderRecord) string {
	emoji := "✅"
	switch rec.Status {
	case models.OrderRejected:
		emoji = "❌"
	case models.OrderPending:
		emoji = "⏳"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s", emoji, symbol, rec.Side, rec.Status)
	if rec.Quantity > 0 {
		fmt.Fprintf(&b, "\nqty=%g @ %.4f", rec.Quantity, rec.Price)
	}
	if rec.OrderID != 0 {
		fmt.Fprintf(&b, "\norderId=%d", rec.OrderID)
	}
	if rec.Message != "" {
		b.WriteString("\n" + rec.Message)
	}
	return b.String()
}

func FormatStop(symbol, reason string) string {
	return fmt.Sprintf("⛔️ %s остановлена: %s", symbol, reason)
}

// Log: заглушка без Telegram, всё пишет в лог.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log.Named("notify")}
}

func (l *Log) OrderPlaced(_ context.Context, symbol string, rec models.OrderRecord) {
	l.log.Info(FormatOrder(symbol, rec))
}

func (l *Log) StrategyStopped(_ context.Context, symbol, reason string) {
	l.log.Warn(FormatStop(symbol, reason))
}
