// Package channel keeps the public mirror channel, the audit channel
// and direct notifications in sync with committed vacancy state. All
// propagation runs after the domain write and is best-effort: failures
// are logged and swallowed.
package channel

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"
	"log/slog"

	"jobbot/apperr"
	"jobbot/core/logger"
	"jobbot/core/telegram/format"
	"jobbot/core/telegram/keyboard"
	"jobbot/core/telegram/sender"
	"jobbot/model"
	"jobbot/render"
	"jobbot/storage"
)

// API is the subset of tele.Bot the notifier needs.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Options configures the channel notifier.
type Options struct {
	ChannelID int64
	// LogChannelID receives audit lines; 0 disables them.
	LogChannelID int64
	// BotUsername builds the claim deep link on mirror posts.
	BotUsername string
	// Now supplies audit timestamps; defaults to time.Now.
	Now func() string
}

// Notifier implements service.Notifier on top of the Telegram API and
// the async sender.
type Notifier struct {
	api        API
	dispatcher *sender.Dispatcher
	vacancies  storage.Vacancies
	opts       Options
}

// New builds a channel notifier. A nil dispatcher degrades to
// synchronous sends.
func New(api API, dispatcher *sender.Dispatcher, vacancies storage.Vacancies, opts Options) *Notifier {
	return &Notifier{
		api:        api,
		dispatcher: dispatcher,
		vacancies:  vacancies,
		opts:       opts,
	}
}

func (n *Notifier) enqueue(ctx context.Context, action string, run func() error) {
	if n.dispatcher == nil {
		if err := run(); err != nil {
			n.logFailure(ctx, action, err)
		}
		return
	}
	wrapped := func() error {
		if err := run(); err != nil {
			n.logFailure(ctx, action, err)
			return err
		}
		return nil
	}
	if err := n.dispatcher.Enqueue(ctx, action, "channel", wrapped); err != nil {
		// Queue saturation must not block the committed transition.
		n.logFailure(ctx, action, err)
	}
}

func (n *Notifier) logFailure(ctx context.Context, action string, err error) {
	sf := &apperr.SyncFailure{Target: action, Err: err}
	logger.Event(ctx, "channel", slog.LevelWarn, "channel.sync",
		slog.String("status", "fail"),
		slog.String("err_code", sf.Code()),
		slog.String("err", sf.Error()),
	)
}

// claimMarkup returns the single claim button linking back to the bot.
func (n *Notifier) claimMarkup(vacancyID int64) *tele.ReplyMarkup {
	url := fmt.Sprintf("https://t.me/%s?start=job_%d", n.opts.BotUsername, vacancyID)
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📥 Claim job", URL: url},
	})
}

// VacancyCreated publishes the initial mirror post and records its
// message id on the vacancy.
func (n *Notifier) VacancyCreated(ctx context.Context, v *model.Vacancy) {
	if v == nil || n.opts.ChannelID == 0 {
		return
	}
	text := render.Vacancy(v, false, nil)
	markup := n.claimMarkup(v.ID)
	vacancyID := v.ID

	n.enqueue(ctx, "mirror.publish", func() error {
		msg, err := n.api.Send(tele.ChatID(n.opts.ChannelID), text, &tele.SendOptions{
			ParseMode:   tele.ModeMarkdown,
			ReplyMarkup: markup,
		})
		if err != nil {
			return err
		}
		if err := n.vacancies.SetChannelMessage(ctx, vacancyID, msg.ID); err != nil {
			return err
		}
		logger.Event(ctx, "channel", slog.LevelInfo, "mirror.publish",
			slog.String("status", "ok"),
			slog.Int64("vacancy_id", vacancyID),
			slog.Int("message_id", msg.ID),
		)
		return nil
	})
}

// VacancyChanged re-renders the mirror post for the vacancy's current
// state. Open vacancies carry the claim button; all other states drop it.
func (n *Notifier) VacancyChanged(ctx context.Context, vacancyID int64) {
	if n.opts.ChannelID == 0 {
		return
	}
	n.enqueue(ctx, "mirror.update", func() error {
		v, err := n.vacancies.Get(ctx, vacancyID)
		if err != nil {
			return err
		}
		messageID := format.DerefInt(v.ChannelMessageID, 0)
		if messageID == 0 {
			return nil
		}

		stored := tele.StoredMessage{
			MessageID: strconv.Itoa(messageID),
			ChatID:    n.opts.ChannelID,
		}
		opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
		if v.Status == model.StatusOpen {
			opts.ReplyMarkup = n.claimMarkup(v.ID)
		}
		if _, err := n.api.Edit(stored, render.Vacancy(v, false, nil), opts); err != nil {
			return err
		}
		logger.Event(ctx, "channel", slog.LevelInfo, "mirror.update",
			slog.String("status", "ok"),
			slog.Int64("vacancy_id", vacancyID),
			slog.String("vacancy_status", string(v.Status)),
		)
		return nil
	})
}

// Audit sends a timestamped action line to the audit channel.
func (n *Notifier) Audit(ctx context.Context, action string, userID int64, nickname string) {
	if n.opts.LogChannelID == 0 {
		return
	}
	text := fmt.Sprintf("🕒 %s\n👤 User: %s (ID: %d)\n📝 Action: %s",
		n.now(), format.EscapeMarkdown(nickname), userID, action)

	n.enqueue(ctx, "audit.send", func() error {
		_, err := n.api.Send(tele.ChatID(n.opts.LogChannelID), text, &tele.SendOptions{
			ParseMode: tele.ModeMarkdown,
		})
		return err
	})
}

// Notify delivers a best-effort direct message to a user.
func (n *Notifier) Notify(ctx context.Context, userID int64, text string) {
	n.enqueue(ctx, "dm.send", func() error {
		_, err := n.api.Send(tele.ChatID(userID), text, &tele.SendOptions{
			ParseMode: tele.ModeMarkdown,
		})
		return err
	})
}

func (n *Notifier) now() string {
	if n.opts.Now != nil {
		return n.opts.Now()
	}
	return nowFormatted()
}
