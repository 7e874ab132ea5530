package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// MessageSender is the part of the admin bot the log handler needs.
type MessageSender interface {
	SendMessage(msg string)
}

// telegramHandler forwards records at or above its level to the admin chat
// while delegating everything to the wrapped handler.
type telegramHandler struct {
	next   slog.Handler
	sender MessageSender
	level  slog.Level
}

// SetupTelegramHandler wraps the logger so warnings and errors also reach
// the admin Telegram chat.
func SetupTelegramHandler(log *slog.Logger, sender MessageSender, level slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:   log.Handler(),
		sender: sender,
		level:  level,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn && record.Level >= h.level && h.sender != nil {
		msg := fmt.Sprintf("[%s] %s", record.Level, record.Message)
		record.Attrs(func(a slog.Attr) bool {
			msg += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
			return true
		})
		go h.sender.SendMessage(msg)
	}
	return h.next.Handle(ctx, record)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{next: h.next.WithAttrs(attrs), sender: h.sender, level: h.level}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{next: h.next.WithGroup(name), sender: h.sender, level: h.level}
}
