package service

import (
	"context"

	"jobbot/model"
)

// Notifier propagates committed domain changes to the outside world:
// the mirror channel post, the audit channel and direct messages. All
// methods are fire-and-forget; implementations must never report
// failures back into the transition that triggered them.
type Notifier interface {
	// VacancyCreated publishes the initial mirror post for a new vacancy.
	VacancyCreated(ctx context.Context, v *model.Vacancy)
	// VacancyChanged re-renders the mirror post after a transition.
	VacancyChanged(ctx context.Context, vacancyID int64)
	// Audit records a user action in the audit channel.
	Audit(ctx context.Context, action string, userID int64, nickname string)
	// Notify delivers a best-effort direct message to a user.
	Notify(ctx context.Context, userID int64, text string)
}

// NopNotifier discards all notifications. Used in tests.
type NopNotifier struct{}

func (NopNotifier) VacancyCreated(context.Context, *model.Vacancy)     {}
func (NopNotifier) VacancyChanged(context.Context, int64)              {}
func (NopNotifier) Audit(context.Context, string, int64, string)       {}
func (NopNotifier) Notify(context.Context, int64, string)              {}
