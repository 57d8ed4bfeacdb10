package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "jobbot/core/telegram/helpers"
	"jobbot/core/telegram/keyboard"
	"jobbot/model"
)

// Registration flow: nickname, citizenship, bank account. Each step
// either advances the state or re-prompts without touching it.

func (a *App) stepRegNickname(c tele.Context) error {
	nickname := c.Text()
	if !model.ValidNickname(nickname) {
		return tghelpers.SendText(c, "❌ Invalid nickname format. Use latin letters, digits and underscore only.")
	}
	senderID := c.Sender().ID
	a.sessions.SetTemp(senderID, tempNickname, nickname)
	a.sessions.SetState(senderID, stateRegCitizenship)
	return tghelpers.SendText(c, "Choose your citizenship:",
		&tele.SendOptions{ReplyMarkup: citizenshipMarkup()})
}

func (a *App) stepRegCitizenship(c tele.Context) error {
	citizenship, ok := model.ParseCitizenship(c.Text())
	if !ok {
		// Anything off the keyboard is ignored, matching the keyboard's
		// fixed label contract.
		return nil
	}
	senderID := c.Sender().ID
	a.sessions.SetTemp(senderID, tempCitizenship, string(citizenship))
	a.sessions.SetState(senderID, stateRegBank)
	return tghelpers.SendText(c, "Enter your bank account number:",
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

func (a *App) stepRegBank(c tele.Context) error {
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	nickname := a.tempString(senderID, tempNickname)
	citizenship := a.tempString(senderID, tempCitizenship)
	if nickname == "" || citizenship == "" {
		a.sessions.Clear(senderID)
		return tghelpers.SendText(c, "Something went wrong. Send /start to begin again.")
	}

	user, err := a.users.Register(ctx, senderID, nickname, model.Citizenship(citizenship), c.Text())
	if err != nil {
		a.sessions.Clear(senderID)
		return err
	}
	a.sessions.Clear(senderID)

	if serr := tghelpers.SendText(c, "✅ Registration complete!",
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()}); serr != nil {
		return serr
	}
	return a.showMainMenu(ctx, c, user, 0)
}

func (a *App) tempString(userID int64, key string) string {
	val, ok := a.sessions.GetTemp(userID, key)
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}
