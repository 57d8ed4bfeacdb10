// Package render turns domain entities into Telegram Markdown text.
// Every function is pure; user-controlled fields are escaped, structural
// labels are not.
package render

import (
	"fmt"
	"strings"

	"jobbot/core/telegram/format"
	"jobbot/model"
)

const divider = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"

// StatusLabel returns the human-readable label for a vacancy status.
// The failed label is kept for legacy rows even though no transition
// produces that status anymore.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusOpen:
		return "Available"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusCompleted:
		return "Completed"
	case model.StatusPaid:
		return "Paid"
	case model.StatusDeleted:
		return "Deleted"
	case model.StatusFailed:
		return "Refused"
	}
	return string(s)
}

// StatusEmoji returns the marker shown next to a vacancy status.
func StatusEmoji(s model.Status) string {
	switch s {
	case model.StatusInProgress:
		return "⏳"
	case model.StatusCompleted:
		return "✅"
	case model.StatusPaid:
		return "💰"
	case model.StatusDeleted:
		return "🗑"
	case model.StatusFailed:
		return "❌"
	}
	return "🆕"
}

// Vacancy renders the job card. The admin view additionally exposes
// coordinates, the assigned worker and the creation timestamp; worker
// may be nil when the vacancy is unassigned.
func Vacancy(v *model.Vacancy, admin bool, worker *model.User) string {
	if v == nil {
		return "⚠️ _Job data unavailable._"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📢 *JOB | #id%03d*\n", v.ID)
	fmt.Fprintf(&b, "%s Status: %s\n", StatusEmoji(v.Status), format.EscapeMarkdown(StatusLabel(v.Status)))
	fmt.Fprintf(&b, "🔥 Priority: %s\n", v.Priority)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeMarkdown(v.Description))
	fmt.Fprintf(&b, "📂 Category: %s\n", v.Category)
	fmt.Fprintf(&b, "💰 Salary: %s cr\n", v.Salary.String())
	b.WriteString(divider + "\n")

	if admin {
		if coords := format.DerefString(v.Coords, ""); coords != "" {
			fmt.Fprintf(&b, "📍 *Coordinates:* `%s`\n", format.EscapeMarkdown(coords))
		}
		if v.Assigned() {
			fmt.Fprintf(&b, "👤 *Worker ID:* `%d`\n", *v.AssignedUserID)
			if worker != nil {
				fmt.Fprintf(&b, "💳 *Worker account:* `%s`\n", format.EscapeMarkdown(worker.BankAccount))
			}
		}
		fmt.Fprintf(&b, "🛠 *Created:* %s\n", v.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return b.String()
}

// ActiveJob renders the user's active job card with a position header.
func ActiveJob(v *model.Vacancy, index, total int) string {
	return fmt.Sprintf("🏃 *YOUR ACTIVE JOB (%d of %d)*\n\n%s", index+1, total, Vacancy(v, false, nil))
}

// ClaimConfirmation renders the message shown right after a job is
// claimed. Construction jobs are coordinated by a curator; everything
// else follows the self-service completion flow.
func ClaimConfirmation(v *model.Vacancy) string {
	if v.Category == model.CategoryConstruction {
		return fmt.Sprintf("✅ Job #id%03d is yours!\nℹ️ Wait for a message from the curator.", v.ID)
	}
	return fmt.Sprintf(
		"✅ Job #id%03d is yours!\nℹ️ Gather the resources, send /start and press «Done», then send the drop-off coordinates.",
		v.ID,
	)
}

// Profile renders the user's profile card.
func Profile(u *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 *Profile: %s*\n", format.EscapeMarkdown(u.Nickname))
	fmt.Fprintf(&b, "🌍 Citizenship: %s\n", u.Citizenship)
	fmt.Fprintf(&b, "💳 Account: `%s`\n", format.EscapeMarkdown(u.BankAccount))
	fmt.Fprintf(&b, "🏆 Completed: %d\n", u.CompletedJobs)
	fmt.Fprintf(&b, "💰 Earned: %s cr", u.TotalEarned.String())
	return b.String()
}

// Leaderboard renders the top earners list.
func Leaderboard(users []model.User) string {
	var b strings.Builder
	b.WriteString("🏆 *Top earners:*\n\n")
	for i := range users {
		u := &users[i]
		fmt.Fprintf(&b, "%d. %s - %s cr\n", i+1, format.EscapeMarkdown(u.Nickname), u.TotalEarned.String())
	}
	return b.String()
}

// Stats renders the admin statistics summary.
func Stats(totalUsers int) string {
	return fmt.Sprintf("📊 *Statistics*\n👥 Registered users: %d", totalUsers)
}

// JobListEntry renders one row of the admin job list keyboard.
func JobListEntry(v *model.Vacancy) string {
	return fmt.Sprintf("%s #%03d | %s cr", StatusEmoji(v.Status), v.ID, v.Salary.String())
}
