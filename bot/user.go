package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"

	"jobbot/apperr"
	"jobbot/core/telegram/callbacks"
	tghelpers "jobbot/core/telegram/helpers"
	"jobbot/core/telegram/keyboard"
	"jobbot/model"
	"jobbot/render"
	"jobbot/storage"
)

const welcomeText = "👋 Welcome!\n\nYou have no active jobs. Current openings are posted in the union channel."

func handlerCtx(c tele.Context) context.Context {
	if ctx, ok := tghelpers.ContextFrom(c); ok {
		return ctx
	}
	return tghelpers.BuildContext(c)
}

// handleStart routes /start: unregistered users enter the registration
// flow, a deep-link payload claims the referenced vacancy, everything
// else opens the main menu.
func (a *App) handleStart(c tele.Context) error {
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	user, err := a.users.Get(ctx, senderID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		a.sessions.Clear(senderID)
		a.sessions.SetState(senderID, stateRegNickname)
		return tghelpers.SendText(c, "🧱 Welcome!\nEnter your in-game nickname:",
			&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
	}

	payload := ""
	if m := c.Message(); m != nil {
		payload = m.Payload
	}
	if payload == "" {
		payload = startPayload(c.Text())
	}
	if intent := ParseStartIntent(payload); intent.Kind == StartClaim {
		return a.claimJob(ctx, c, user, intent.VacancyID)
	}

	return a.showMainMenu(ctx, c, user, 0)
}

// claimJob runs the deep-link claim path: the vacancy must still be
// open and the user must hold no other active job.
func (a *App) claimJob(ctx context.Context, c tele.Context, user *model.User, vacancyID int64) error {
	err := a.vacancies.Claim(ctx, vacancyID, user.ID)
	switch {
	case err == nil:
		v, gerr := a.vacancies.Get(ctx, vacancyID)
		if gerr != nil {
			return gerr
		}
		return tghelpers.SendMD(c, render.ClaimConfirmation(v))
	case errors.Is(err, apperr.ErrUserBusy):
		return tghelpers.SendText(c, "❌ You already have an active job.")
	case errors.Is(err, apperr.ErrVacancyTaken), errors.Is(err, storage.ErrNotFound):
		return tghelpers.SendText(c, "⚠️ This job is already taken or deleted.")
	default:
		return err
	}
}

// showMainMenu renders either the welcome screen or the active-job
// player at the given slot.
func (a *App) showMainMenu(ctx context.Context, c tele.Context, user *model.User, index int) error {
	active, err := a.vacancies.Active(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return tghelpers.EditOrSendMD(c, welcomeText, mainMenuMarkup())
	}
	if index < 0 || index >= len(active) {
		index = 0
	}
	job := &active[index]
	text := render.ActiveJob(job, index, len(active))
	return tghelpers.EditOrSendMD(c, text, activeJobMarkup(job.ID, index, len(active)))
}

func (a *App) handleOrders(c tele.Context) error {
	text := "💼 All current jobs are posted in the union channel."
	if a.channelLink != "" {
		text += "\n\n🔗 [Open the union channel](" + a.channelLink + ")"
	}
	return tghelpers.SendText(c, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
}

func (a *App) handleMyProfile(c tele.Context) error {
	ctx := handlerCtx(c)
	user, err := a.users.Get(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, "You are not registered. Send /start")
		}
		return err
	}
	return tghelpers.SendMD(c, render.Profile(user), profileMarkup())
}

func (a *App) cbProfile(c tele.Context) error {
	ctx := handlerCtx(c)
	user, err := a.users.Get(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, "You are not registered. Send /start")
		}
		return err
	}
	return tghelpers.EditOrSendMD(c, render.Profile(user), profileMarkup())
}

func (a *App) cbToMain(c tele.Context) error {
	ctx := handlerCtx(c)
	user, err := a.users.Get(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, "You are not registered. Send /start")
		}
		return err
	}
	return a.showMainMenu(ctx, c, user, 0)
}

// cbActiveJob switches the player to another active-job slot.
func (a *App) cbActiveJob(c tele.Context) error {
	index, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	ctx := handlerCtx(c)
	user, uerr := a.users.Get(ctx, c.Sender().ID)
	if uerr != nil {
		return uerr
	}
	return a.showMainMenu(ctx, c, user, index)
}

// cbJobDone opens the completion report: the next text message is
// interpreted as the drop-off coordinates.
func (a *App) cbJobDone(c tele.Context) error {
	vacancyID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	senderID := c.Sender().ID
	a.sessions.SetTemp(senderID, tempJobID, vacancyID)
	a.sessions.SetState(senderID, stateAwaitCoords)
	return tghelpers.SendText(c, "📍 Send the coordinates where you left the resources / finished the work:")
}

func (a *App) stepCoords(c tele.Context) error {
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	vacancyID, ok := a.sessions.GetTempInt64(senderID, tempJobID)
	if !ok {
		a.sessions.Clear(senderID)
		return tghelpers.SendText(c, "Something went wrong. Send /start to open the menu.")
	}

	err := a.vacancies.Complete(ctx, vacancyID, senderID, c.Text())
	var vErr *apperr.Validation
	switch {
	case errors.As(err, &vErr):
		// Re-prompt, state unchanged.
		return tghelpers.SendText(c, "❌ Coordinates must not be empty.")
	case err != nil && apperr.IsConflict(err):
		a.sessions.Clear(senderID)
		return tghelpers.SendText(c, "⚠️ This job is no longer in progress.")
	case err != nil:
		return err
	}

	a.sessions.Clear(senderID)
	if serr := tghelpers.SendText(c, "✅ Report sent! The job is marked as completed."); serr != nil {
		return serr
	}
	user, uerr := a.users.Get(ctx, senderID)
	if uerr != nil {
		return uerr
	}
	return a.showMainMenu(ctx, c, user, 0)
}

func (a *App) cbJobRefuse(c tele.Context) error {
	vacancyID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	if rerr := a.vacancies.Refuse(ctx, vacancyID, senderID); rerr != nil {
		if apperr.IsConflict(rerr) {
			return c.Respond(&tele.CallbackResponse{Text: "This job is not yours anymore"})
		}
		return rerr
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "You refused the job"})

	user, uerr := a.users.Get(ctx, senderID)
	if uerr != nil {
		return uerr
	}
	return a.showMainMenu(ctx, c, user, 0)
}

func (a *App) cbEditBank(c tele.Context) error {
	senderID := c.Sender().ID
	a.sessions.SetState(senderID, stateEditBank)
	return tghelpers.SendText(c, "📝 Enter the new bank account number:")
}

func (a *App) stepEditBank(c tele.Context) error {
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	if err := a.users.UpdateBank(ctx, senderID, c.Text()); err != nil {
		return err
	}
	a.sessions.Clear(senderID)
	if err := tghelpers.SendText(c, "✅ Account number updated!"); err != nil {
		return err
	}
	user, uerr := a.users.Get(ctx, senderID)
	if uerr != nil {
		return uerr
	}
	return tghelpers.SendMD(c, render.Profile(user), profileMarkup())
}
