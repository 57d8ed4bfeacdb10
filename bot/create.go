package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"jobbot/apperr"
	"jobbot/core/telegram/callbacks"
	tghelpers "jobbot/core/telegram/helpers"
	"jobbot/core/telegram/keyboard"
	"jobbot/model"
	"jobbot/service"
)

// Vacancy creation flow (admin only): description, priority, category,
// salary. Priority and category come in as button callbacks; the step
// handlers check the flow position so a stale button press cannot jump
// the state machine.

func (a *App) cbAdminCreateJob(c tele.Context) error {
	senderID := c.Sender().ID
	a.sessions.Clear(senderID)
	a.sessions.SetState(senderID, stateCreateDescription)
	return tghelpers.EditOrSendMD(c, "📝 Enter the job description:",
		keyboard.SingleCancelMarkup(cbAdmBack))
}

func (a *App) stepCreateDescription(c tele.Context) error {
	description := strings.TrimSpace(c.Text())
	if description == "" {
		return tghelpers.SendText(c, "❌ The description must not be empty.")
	}
	senderID := c.Sender().ID
	a.sessions.SetTemp(senderID, tempDescription, description)
	a.sessions.SetState(senderID, stateCreatePriority)
	return tghelpers.SendMD(c, "Choose a priority:", priorityMarkup())
}

func (a *App) cbCreatePriority(c tele.Context) error {
	senderID := c.Sender().ID
	if a.sessions.GetState(senderID) != stateCreatePriority {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	priority, ok := model.ParsePriority(callbacks.CallbackPayload(c))
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	a.sessions.SetTemp(senderID, tempPriority, string(priority))
	a.sessions.SetState(senderID, stateCreateCategory)
	return tghelpers.EditOrSendMD(c, "Choose a category:", categoryMarkup())
}

func (a *App) cbCreateCategory(c tele.Context) error {
	senderID := c.Sender().ID
	if a.sessions.GetState(senderID) != stateCreateCategory {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	category, ok := model.ParseCategory(callbacks.CallbackPayload(c))
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	a.sessions.SetTemp(senderID, tempCategory, string(category))
	a.sessions.SetState(senderID, stateCreateSalary)
	return tghelpers.EditOrSendMD(c, "Enter the payment amount (number only):")
}

func (a *App) stepCreateSalary(c tele.Context) error {
	ctx := handlerCtx(c)
	senderID := c.Sender().ID

	salary, err := parseSalary(c.Text())
	if err != nil {
		return tghelpers.SendText(c, "❌ Enter a number")
	}

	in := service.CreateInput{
		Description: a.tempString(senderID, tempDescription),
		Priority:    model.Priority(a.tempString(senderID, tempPriority)),
		Category:    model.Category(a.tempString(senderID, tempCategory)),
		Salary:      salary,
		CreatedByID: senderID,
	}
	v, cerr := a.vacancies.Create(ctx, in)
	var vErr *apperr.Validation
	if errors.As(cerr, &vErr) {
		if vErr.Field == "salary" {
			return tghelpers.SendText(c, "❌ Enter a positive number")
		}
		a.sessions.Clear(senderID)
		return tghelpers.SendText(c, "Something went wrong. Start over from the panel.")
	}
	if cerr != nil {
		return cerr
	}

	a.sessions.Clear(senderID)
	if serr := tghelpers.SendText(c, fmt.Sprintf("✅ Job #id%03d created!", v.ID)); serr != nil {
		return serr
	}
	return a.handleAdminPanel(c)
}

// parseSalary accepts a decimal with either separator, "150", "99.5"
// and "99,5" alike.
func parseSalary(text string) (decimal.Decimal, error) {
	text = strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}
