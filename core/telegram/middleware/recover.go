package middleware

import (
	"runtime/debug"

	"jobbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				rid, _ := c.Get("rid").(string)
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.String("rid", rid),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
