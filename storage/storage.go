// Package storage provides the persistence store for users and
// vacancies. Lifecycle transitions are expressed as conditional updates:
// the guard travels with the write, so check-then-act races cannot
// produce a second assignee or a double payout.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"jobbot/model"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrNoTransition is returned when a conditional update matched zero
// rows: the entity was not in the required state.
var ErrNoTransition = errors.New("storage: no transition")

// Users is the user repository.
type Users interface {
	// Get returns a user by Telegram id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.User, error)
	// Create inserts a user. A duplicate id is a silent no-op: the first
	// registration wins.
	Create(ctx context.Context, u *model.User) error
	// UpdateBank replaces the bank account string.
	UpdateBank(ctx context.Context, id int64, bank string) error
	// All returns every registered user.
	All(ctx context.Context) ([]model.User, error)
	// TopByEarnings returns up to limit users ordered by total earned.
	TopByEarnings(ctx context.Context, limit int) ([]model.User, error)
}

// Vacancies is the vacancy repository. Transition methods return
// ErrNoTransition when the status guard did not match.
type Vacancies interface {
	// Create inserts an open vacancy and fills in its assigned id.
	Create(ctx context.Context, v *model.Vacancy) error
	// Get returns a vacancy by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Vacancy, error)
	// All returns every vacancy, newest first.
	All(ctx context.Context) ([]model.Vacancy, error)
	// ActiveByUser returns the user's in-progress vacancies.
	ActiveByUser(ctx context.Context, userID int64) ([]model.Vacancy, error)

	// Assign atomically moves an open vacancy to in-progress for userID.
	// The same statement guards both invariants: the vacancy must still
	// be open and the user must hold no other in-progress vacancy.
	Assign(ctx context.Context, id, userID int64) error
	// Release moves an in-progress vacancy held by userID back to open
	// and clears the assignee.
	Release(ctx context.Context, id, userID int64) error
	// Complete moves an in-progress vacancy held by userID to completed,
	// records coords and increments the worker's completed counter.
	Complete(ctx context.Context, id, userID int64, coords string) error
	// Pay moves a completed vacancy to paid and credits its salary to
	// the assignee, exactly once. Returns the credited worker and amount.
	Pay(ctx context.Context, id int64) (workerID int64, salary decimal.Decimal, err error)
	// SoftDelete marks a vacancy deleted. Paid and already deleted
	// vacancies are left untouched.
	SoftDelete(ctx context.Context, id int64) error
	// SetChannelMessage records the mirror post reference.
	SetChannelMessage(ctx context.Context, id int64, messageID int) error
}

// Store bundles both repositories.
type Store struct {
	Users     Users
	Vacancies Vacancies
}
