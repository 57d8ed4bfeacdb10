package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jobbot/apperr"
	"jobbot/core/logger"
	"jobbot/model"
	"jobbot/storage"
)

// Vacancies is the lifecycle engine. Transitions go through guarded
// store updates; a guard miss surfaces as a typed conflict and never
// mutates anything. Mirror/audit propagation happens after the commit
// and cannot fail a transition.
type Vacancies struct {
	vacancies storage.Vacancies
	users     storage.Users
	notifier  Notifier
}

// NewVacancies wires the lifecycle engine.
func NewVacancies(vacancies storage.Vacancies, users storage.Users, notifier Notifier) *Vacancies {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Vacancies{vacancies: vacancies, users: users, notifier: notifier}
}

// CreateInput carries the fields collected by the admin creation flow.
type CreateInput struct {
	Description string
	Priority    model.Priority
	Category    model.Category
	Salary      decimal.Decimal
	CreatedByID int64
}

// Create stores a new open vacancy and publishes its mirror post.
func (s *Vacancies) Create(ctx context.Context, in CreateInput) (*model.Vacancy, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.NewValidation("description", "must not be empty")
	}
	if _, ok := model.ParsePriority(string(in.Priority)); !ok {
		return nil, apperr.NewValidation("priority", "unknown label")
	}
	if _, ok := model.ParseCategory(string(in.Category)); !ok {
		return nil, apperr.NewValidation("category", "unknown label")
	}
	if !in.Salary.IsPositive() {
		return nil, apperr.NewValidation("salary", "must be a positive number")
	}

	v := &model.Vacancy{
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		Salary:      in.Salary,
		CreatedByID: in.CreatedByID,
	}
	start := time.Now()
	if err := s.vacancies.Create(ctx, v); err != nil {
		return nil, apperr.WrapStore("create", err)
	}
	logger.SVCVacancies.Info("vacancy created",
		slog.String("event", "vacancies.create"),
		slog.Int64("vacancy_id", v.ID),
		slog.Int64("user_id", in.CreatedByID),
		slog.String("priority", string(v.Priority)),
		slog.String("category", string(v.Category)),
		slog.Duration("duration", logger.Took(start)),
	)
	s.notifier.VacancyCreated(ctx, v)
	return v, nil
}

// Get returns a vacancy by id.
func (s *Vacancies) Get(ctx context.Context, id int64) (*model.Vacancy, error) {
	v, err := s.vacancies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.WrapStore("get", err)
	}
	return v, nil
}

// List returns every vacancy, newest first.
func (s *Vacancies) List(ctx context.Context) ([]model.Vacancy, error) {
	vs, err := s.vacancies.All(ctx)
	if err != nil {
		return nil, apperr.WrapStore("list", err)
	}
	return vs, nil
}

// Active returns the user's in-progress vacancies.
func (s *Vacancies) Active(ctx context.Context, userID int64) ([]model.Vacancy, error) {
	vs, err := s.vacancies.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperr.WrapStore("active", err)
	}
	return vs, nil
}

// Claim binds an open vacancy exclusively to the user. Exclusivity on
// both sides is enforced by the store in a single conditional update;
// this method only translates a guard miss into the right conflict.
func (s *Vacancies) Claim(ctx context.Context, vacancyID, userID int64) error {
	err := s.vacancies.Assign(ctx, vacancyID, userID)
	if err == nil {
		s.logTransition(ctx, "claim", vacancyID, userID, nil)
		s.afterTransition(ctx, "claimed vacancy", vacancyID, userID)
		return nil
	}
	if !errors.Is(err, storage.ErrNoTransition) {
		return apperr.WrapStore("claim", err)
	}

	// Guard missed: name the reason for the user.
	active, aerr := s.vacancies.ActiveByUser(ctx, userID)
	if aerr == nil && len(active) > 0 {
		s.logTransition(ctx, "claim", vacancyID, userID, apperr.ErrUserBusy)
		return apperr.ErrUserBusy
	}
	s.logTransition(ctx, "claim", vacancyID, userID, apperr.ErrVacancyTaken)
	return apperr.ErrVacancyTaken
}

// Refuse returns an in-progress vacancy to the open pool with the
// assignment cleared. Only the assignee may refuse.
func (s *Vacancies) Refuse(ctx context.Context, vacancyID, userID int64) error {
	if err := s.vacancies.Release(ctx, vacancyID, userID); err != nil {
		if errors.Is(err, storage.ErrNoTransition) {
			conflict := apperr.NewConflict("refuse", "vacancy is not in progress for this user")
			s.logTransition(ctx, "refuse", vacancyID, userID, conflict)
			return conflict
		}
		return apperr.WrapStore("refuse", err)
	}
	s.logTransition(ctx, "refuse", vacancyID, userID, nil)
	s.afterTransition(ctx, "refused vacancy", vacancyID, userID)
	return nil
}

// Complete records the work report with coordinates. The worker's
// completed counter grows by one; earnings stay untouched until Pay.
func (s *Vacancies) Complete(ctx context.Context, vacancyID, userID int64, coords string) error {
	if strings.TrimSpace(coords) == "" {
		return apperr.NewValidation("coords", "must not be empty")
	}
	if err := s.vacancies.Complete(ctx, vacancyID, userID, coords); err != nil {
		if errors.Is(err, storage.ErrNoTransition) {
			conflict := apperr.NewConflict("complete", "vacancy is not in progress for this user")
			s.logTransition(ctx, "complete", vacancyID, userID, conflict)
			return conflict
		}
		return apperr.WrapStore("complete", err)
	}
	s.logTransition(ctx, "complete", vacancyID, userID, nil)
	s.afterTransition(ctx, "completed vacancy", vacancyID, userID)
	return nil
}

// PayResult reports who was credited and how much.
type PayResult struct {
	WorkerID int64
	Salary   decimal.Decimal
}

// Pay confirms the payout for a completed vacancy. The status guard and
// the credit run in one store transaction, so a second call conflicts
// without re-crediting.
func (s *Vacancies) Pay(ctx context.Context, vacancyID int64) (*PayResult, error) {
	workerID, salary, err := s.vacancies.Pay(ctx, vacancyID)
	if err != nil {
		if errors.Is(err, storage.ErrNoTransition) {
			conflict := apperr.NewConflict("pay", "vacancy is not awaiting payment")
			s.logTransition(ctx, "pay", vacancyID, 0, conflict)
			return nil, conflict
		}
		return nil, apperr.WrapStore("pay", err)
	}
	s.logTransition(ctx, "pay", vacancyID, workerID, nil)
	s.afterTransition(ctx, "paid vacancy", vacancyID, workerID)
	s.notifier.Notify(ctx, workerID,
		fmt.Sprintf("💰 Payout confirmed for job #id%03d: %s cr", vacancyID, salary.String()))
	return &PayResult{WorkerID: workerID, Salary: salary}, nil
}

// Delete marks a vacancy deleted. Paid vacancies are protected: payout
// history must stay addressable.
func (s *Vacancies) Delete(ctx context.Context, vacancyID, adminID int64) error {
	if err := s.vacancies.SoftDelete(ctx, vacancyID); err != nil {
		if errors.Is(err, storage.ErrNoTransition) {
			conflict := apperr.NewConflict("delete", "vacancy is paid or already deleted")
			s.logTransition(ctx, "delete", vacancyID, adminID, conflict)
			return conflict
		}
		return apperr.WrapStore("delete", err)
	}
	s.logTransition(ctx, "delete", vacancyID, adminID, nil)
	s.afterTransition(ctx, "deleted vacancy", vacancyID, adminID)
	return nil
}

// afterTransition propagates a committed status change: mirror re-render
// plus an audit line. Both are async and failure isolated.
func (s *Vacancies) afterTransition(ctx context.Context, action string, vacancyID, actorID int64) {
	s.notifier.VacancyChanged(ctx, vacancyID)

	nickname := ""
	if actorID != 0 {
		if u, err := s.users.Get(ctx, actorID); err == nil {
			nickname = u.Nickname
		}
	}
	s.notifier.Audit(ctx, fmt.Sprintf("%s #id%03d", action, vacancyID), actorID, nickname)
}

func (s *Vacancies) logTransition(ctx context.Context, op string, vacancyID, userID int64, err error) {
	attrs := []slog.Attr{
		slog.String("event", "vacancies."+op),
		slog.Int64("vacancy_id", vacancyID),
	}
	if userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("status", "skip"), slog.String("err", err.Error()))
		logger.SVCVacancies.LogAttrs(ctx, slog.LevelWarn, "transition rejected", attrs...)
		return
	}
	attrs = append(attrs, slog.String("status", "ok"))
	logger.SVCVacancies.LogAttrs(ctx, slog.LevelInfo, "transition applied", attrs...)
}
