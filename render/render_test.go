package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"jobbot/model"
)

func sampleVacancy() *model.Vacancy {
	return &model.Vacancy{
		ID:          7,
		Description: "Mine iron",
		Priority:    model.PriorityMedium,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(150),
		Status:      model.StatusOpen,
		CreatedByID: 1,
		CreatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestVacancyPublicCard(t *testing.T) {
	v := sampleVacancy()
	text := Vacancy(v, false, nil)

	assert.Contains(t, text, "JOB | #id007")
	assert.Contains(t, text, "🆕 Status: Available")
	assert.Contains(t, text, "Priority: Medium")
	assert.Contains(t, text, "Description: Mine iron")
	assert.Contains(t, text, "Salary: 150 cr")
	assert.NotContains(t, text, "Created:")
	assert.NotContains(t, text, "Worker ID:")
}

func TestVacancyAdminCard(t *testing.T) {
	v := sampleVacancy()
	uid := int64(42)
	coords := "x:100,y:200"
	v.Status = model.StatusCompleted
	v.AssignedUserID = &uid
	v.Coords = &coords
	worker := &model.User{ID: uid, Nickname: "miner_1", BankAccount: "ACC-1"}

	text := Vacancy(v, true, worker)

	assert.Contains(t, text, "✅ Status: Completed")
	assert.Contains(t, text, "`x:100,y:200`")
	assert.Contains(t, text, "*Worker ID:* `42`")
	assert.Contains(t, text, "*Worker account:* `ACC-1`")
	assert.Contains(t, text, "*Created:* 2026-08-30 12:00:00")
}

func TestVacancyEscapesUserFields(t *testing.T) {
	v := sampleVacancy()
	v.Description = "drop_off *here* [now]"

	text := Vacancy(v, false, nil)

	assert.Contains(t, text, `drop\_off \*here\* \[now]`)
}

func TestStatusLabels(t *testing.T) {
	cases := map[model.Status]string{
		model.StatusOpen:       "Available",
		model.StatusInProgress: "In progress",
		model.StatusCompleted:  "Completed",
		model.StatusPaid:       "Paid",
		model.StatusDeleted:    "Deleted",
		model.StatusFailed:     "Refused",
	}
	for st, want := range cases {
		assert.Equal(t, want, StatusLabel(st))
	}
	assert.Equal(t, "weird", StatusLabel(model.Status("weird")))
}

func TestClaimConfirmationByCategory(t *testing.T) {
	v := sampleVacancy()

	text := ClaimConfirmation(v)
	assert.Contains(t, text, "Job #id007 is yours!")
	assert.Contains(t, text, "coordinates")

	v.Category = model.CategoryConstruction
	text = ClaimConfirmation(v)
	assert.Contains(t, text, "curator")
	assert.NotContains(t, text, "coordinates")
}

func TestProfileAndLeaderboard(t *testing.T) {
	u := &model.User{
		ID:            42,
		Nickname:      "miner_1",
		Citizenship:   model.CitizenshipCapital,
		BankAccount:   "ACC-1",
		CompletedJobs: 3,
		TotalEarned:   decimal.NewFromInt(450),
	}

	profile := Profile(u)
	assert.Contains(t, profile, `Profile: miner\_1`)
	assert.Contains(t, profile, "Citizenship: Capital")
	assert.Contains(t, profile, "Completed: 3")
	assert.Contains(t, profile, "Earned: 450 cr")

	board := Leaderboard([]model.User{*u})
	assert.True(t, strings.HasPrefix(board, "🏆"))
	assert.Contains(t, board, `1. miner\_1 - 450 cr`)
}

func TestActiveJobHeader(t *testing.T) {
	text := ActiveJob(sampleVacancy(), 1, 3)
	assert.Contains(t, text, "YOUR ACTIVE JOB (2 of 3)")
	assert.Contains(t, text, "JOB | #id007")
}

func TestJobListEntry(t *testing.T) {
	v := sampleVacancy()
	v.Status = model.StatusInProgress
	assert.Equal(t, "⏳ #007 | 150 cr", JobListEntry(v))
}
