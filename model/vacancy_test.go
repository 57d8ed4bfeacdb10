package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusPaid, StatusDeleted, StatusFailed} {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, Status("").Valid())
	assert.False(t, Status("archived").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusDeleted.Terminal())
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusCompleted.Terminal())
	assert.False(t, StatusFailed.Terminal())
}

func TestVacancyAssigned(t *testing.T) {
	var v Vacancy
	assert.False(t, v.Assigned())
	worker := int64(42)
	v.AssignedUserID = &worker
	assert.True(t, v.Assigned())
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("High")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)
	_, ok = ParsePriority("high")
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("Resources")
	assert.True(t, ok)
	assert.Equal(t, CategoryResources, c)
	_, ok = ParseCategory("")
	assert.False(t, ok)
}
