package channel

import (
	"context"
	"sync/atomic"

	"jobbot/model"
)

// Lazy is a notifier that forwards to a Notifier bound after startup.
// The bot instance only exists once the Telegram runtime is up, while
// the services that emit notifications are wired before it; until Bind
// is called every notification is a no-op.
type Lazy struct {
	inner atomic.Pointer[Notifier]
}

// Bind installs the live notifier. Safe to call once the bot is running.
func (l *Lazy) Bind(n *Notifier) {
	l.inner.Store(n)
}

func (l *Lazy) VacancyCreated(ctx context.Context, v *model.Vacancy) {
	if n := l.inner.Load(); n != nil {
		n.VacancyCreated(ctx, v)
	}
}

func (l *Lazy) VacancyChanged(ctx context.Context, vacancyID int64) {
	if n := l.inner.Load(); n != nil {
		n.VacancyChanged(ctx, vacancyID)
	}
}

func (l *Lazy) Audit(ctx context.Context, action string, userID int64, nickname string) {
	if n := l.inner.Load(); n != nil {
		n.Audit(ctx, action, userID, nickname)
	}
}

func (l *Lazy) Notify(ctx context.Context, userID int64, text string) {
	if n := l.inner.Load(); n != nil {
		n.Notify(ctx, userID, text)
	}
}
