package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a vacancy.
type Status string

const (
	StatusOpen       Status = "not_completed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaid       Status = "paid"
	StatusDeleted    Status = "deleted"
	// StatusFailed is a recognized legacy value: the formatter knows its
	// label but no transition produces it. Refusal returns a vacancy to
	// StatusOpen.
	StatusFailed Status = "failed"
)

// Valid reports whether the status belongs to the closed set, legacy
// value included.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusPaid, StatusDeleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusDeleted
}

// Priority of a vacancy.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists selectable priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps button payloads to a priority.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Category of a vacancy.
type Category string

const (
	CategoryResources    Category = "Resources"
	CategoryConstruction Category = "Construction"
)

// Categories lists selectable categories in display order.
var Categories = []Category{CategoryResources, CategoryConstruction}

// ParseCategory maps button payloads to a category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Vacancy is a single unit of paid work. Rows are never removed:
// deletion is a status transition.
type Vacancy struct {
	ID               int64           `db:"id"`
	Description      string          `db:"description"`
	Priority         Priority        `db:"priority"`
	Category         Category        `db:"category"`
	Salary           decimal.Decimal `db:"salary"`
	Status           Status          `db:"status"`
	AssignedUserID   *int64          `db:"assigned_user_id"`
	CreatedByID      int64           `db:"created_by_id"`
	Coords           *string         `db:"coords"`
	ChannelMessageID *int            `db:"channel_message_id"`
	CreatedAt        time.Time       `db:"created_at"`
}

// Assigned reports whether the vacancy is bound to a worker.
func (v *Vacancy) Assigned() bool {
	return v.AssignedUserID != nil
}
