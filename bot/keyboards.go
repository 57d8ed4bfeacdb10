package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"jobbot/core/telegram/keyboard"
	"jobbot/model"
	"jobbot/render"
)

// Callback uniques. The payload, when present, carries the typed
// parameter (vacancy id, page number, slot index or picker label).
const (
	cbMyProfile = "my_profile"
	cbEditBank  = "edit_bank"
	cbToMain    = "to_main"

	cbJobDone   = "job_done"
	cbJobRefuse = "job_refuse"
	cbActiveJob = "active_job"

	cbAdmCreateJob = "adm_create_job"
	cbAdmJobsList  = "adm_jobs_list"
	cbAdmView      = "adm_view"
	cbAdmPay       = "adm_pay"
	cbAdmDel       = "adm_del"
	cbAdmBack      = "adm_back"
	cbAdmStats     = "adm_stats"
	cbAdmRating    = "adm_rating"

	cbSetPriority = "set_priority"
	cbSetCategory = "set_category"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "👤 My profile", Unique: cbMyProfile},
	})
}

func profileMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💳 Change account", Unique: cbEditBank},
		{Text: "🏠 Main menu", Unique: cbToMain},
	})
}

func citizenshipMarkup() *tele.ReplyMarkup {
	rows := make([][]string, 0, len(model.Citizenships))
	for _, c := range model.Citizenships {
		rows = append(rows, []string{string(c)})
	}
	markup := keyboard.ReplyButtons(rows...)
	markup.OneTimeKeyboard = true
	return markup
}

// activeJobMarkup renders the job player: done/refuse plus slot
// navigation when the user holds more than one active job.
func activeJobMarkup(vacancyID int64, index, total int) *tele.ReplyMarkup {
	id := strconv.FormatInt(vacancyID, 10)
	rows := [][]keyboard.InlineBtn{
		{{Text: "☑️ Done", Unique: cbJobDone, Data: id}},
		{{Text: "❌ Refuse", Unique: cbJobRefuse, Data: id}},
	}
	if total > 1 {
		var nav []keyboard.InlineBtn
		if index > 0 {
			nav = append(nav, keyboard.InlineBtn{Text: "⬅️", Unique: cbActiveJob, Data: strconv.Itoa(index - 1)})
		}
		if index < total-1 {
			nav = append(nav, keyboard.InlineBtn{Text: "➡️", Unique: cbActiveJob, Data: strconv.Itoa(index + 1)})
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
	}
	return keyboard.InlineButtonsRows(rows...)
}

func adminMainMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "➕ Create job", Unique: cbAdmCreateJob},
		{Text: "📋 Job list", Unique: cbAdmJobsList, Data: "0"},
		{Text: "📊 Statistics", Unique: cbAdmStats},
	})
}

func adminBackMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Back", Unique: cbAdmBack},
	})
}

func adminStatsMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🏆 Leaderboard", Unique: cbAdmRating},
		{Text: "⬅️ Back", Unique: cbAdmBack},
	})
}

// adminJobsListMarkup lists one page of vacancies with pagination.
func adminJobsListMarkup(jobs []model.Vacancy, page, perPage int) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	start := page * perPage
	end := start + perPage
	if end > len(jobs) {
		end = len(jobs)
	}
	for i := range jobs[start:end] {
		j := &jobs[start+i]
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   render.JobListEntry(j),
			Unique: cbAdmView,
			Data:   strconv.FormatInt(j.ID, 10),
		}})
	}
	var nav []keyboard.InlineBtn
	if page > 0 {
		nav = append(nav, keyboard.InlineBtn{Text: "⬅️", Unique: cbAdmJobsList, Data: strconv.Itoa(page - 1)})
	}
	if len(jobs) > end {
		nav = append(nav, keyboard.InlineBtn{Text: "➡️", Unique: cbAdmJobsList, Data: strconv.Itoa(page + 1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Back to menu", Unique: cbAdmBack}})
	return keyboard.InlineButtonsRows(rows...)
}

// adminJobMarkup shows the manage actions for one vacancy: pay appears
// only for completed jobs, the worker link only when assigned.
func adminJobMarkup(v *model.Vacancy) *tele.ReplyMarkup {
	id := strconv.FormatInt(v.ID, 10)
	var rows [][]keyboard.InlineBtn
	if v.Status == model.StatusCompleted {
		rows = append(rows, []keyboard.InlineBtn{{Text: "💰 Confirm payout", Unique: cbAdmPay, Data: id}})
	}
	if v.Assigned() {
		rows = append(rows, []keyboard.InlineBtn{{
			Text: "💬 Worker",
			URL:  fmt.Sprintf("tg://user?id=%d", *v.AssignedUserID),
		}})
	}
	rows = append(rows,
		[]keyboard.InlineBtn{{Text: "🗑 Delete job", Unique: cbAdmDel, Data: id}},
		[]keyboard.InlineBtn{{Text: "⬅️ To list", Unique: cbAdmJobsList, Data: "0"}},
	)
	return keyboard.InlineButtonsRows(rows...)
}

// Pickers render their labels on a single row.
func priorityMarkup() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		buttons = append(buttons, keyboard.InlineBtn{Text: string(p), Unique: cbSetPriority, Data: string(p)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, len(buttons))
}

func categoryMarkup() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(model.Categories))
	for _, c := range model.Categories {
		buttons = append(buttons, keyboard.InlineBtn{Text: string(c), Unique: cbSetCategory, Data: string(c)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, len(buttons))
}
