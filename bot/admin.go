package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"jobbot/apperr"
	"jobbot/core/telegram/callbacks"
	tghelpers "jobbot/core/telegram/helpers"
	"jobbot/model"
	"jobbot/render"
	"jobbot/storage"
)

const (
	adminPanelText   = "🛠 Union management panel"
	adminJobsPerPage = 10
)

func (a *App) handleAdminPanel(c tele.Context) error {
	return tghelpers.SendMD(c, adminPanelText, adminMainMarkup())
}

func (a *App) cbAdminBack(c tele.Context) error {
	// Back doubles as cancel, so any half-finished flow is abandoned.
	a.sessions.Clear(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, adminPanelText, adminMainMarkup())
}

func (a *App) cbAdminJobsList(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		page = 0
	}
	return a.renderJobsList(c, page)
}

func (a *App) renderJobsList(c tele.Context, page int) error {
	ctx := handlerCtx(c)
	jobs, err := a.vacancies.List(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return tghelpers.EditOrSendMD(c, "No jobs yet.", adminBackMarkup())
	}
	if page < 0 || page*adminJobsPerPage >= len(jobs) {
		page = 0
	}
	return tghelpers.EditOrSendMD(c, "📋 *All jobs:*", adminJobsListMarkup(jobs, page, adminJobsPerPage))
}

func (a *App) cbAdminViewJob(c tele.Context) error {
	vacancyID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	ctx := handlerCtx(c)

	v, err := a.vacancies.Get(ctx, vacancyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "Job not found"})
		}
		return err
	}

	var worker *model.User
	if v.Assigned() {
		if u, uerr := a.users.Get(ctx, *v.AssignedUserID); uerr == nil {
			worker = u
		}
	}
	return tghelpers.EditOrSendMD(c, render.Vacancy(v, true, worker), adminJobMarkup(v))
}

func (a *App) cbAdminPay(c tele.Context) error {
	vacancyID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	ctx := handlerCtx(c)

	if _, perr := a.vacancies.Pay(ctx, vacancyID); perr != nil {
		if apperr.IsConflict(perr) {
			return c.Respond(&tele.CallbackResponse{Text: "Error: the job is not awaiting payment."})
		}
		return perr
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Payout confirmed!", ShowAlert: true})
	return a.renderJobsList(c, 0)
}

func (a *App) cbAdminDelete(c tele.Context) error {
	vacancyID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	ctx := handlerCtx(c)

	if derr := a.vacancies.Delete(ctx, vacancyID, c.Sender().ID); derr != nil {
		if apperr.IsConflict(derr) {
			return c.Respond(&tele.CallbackResponse{Text: "The job is paid or already deleted"})
		}
		return derr
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Job deleted", ShowAlert: true})
	return a.renderJobsList(c, 0)
}

func (a *App) cbAdminStats(c tele.Context) error {
	ctx := handlerCtx(c)
	count, err := a.users.Count(ctx)
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, render.Stats(count), adminStatsMarkup())
}

func (a *App) cbAdminRating(c tele.Context) error {
	ctx := handlerCtx(c)
	top, err := a.users.Top(ctx, 10)
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, render.Leaderboard(top), adminBackMarkup())
}
