package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobbot/apperr"
	"jobbot/core/logger"
	"jobbot/model"
	"jobbot/storage"
)

// Users handles registration and profile maintenance.
type Users struct {
	store    storage.Users
	notifier Notifier
}

// NewUsers wires the user service.
func NewUsers(store storage.Users, notifier Notifier) *Users {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Users{store: store, notifier: notifier}
}

// Get returns a registered user, or storage.ErrNotFound.
func (s *Users) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return u, nil
}

// Registered reports whether the user already has a profile.
func (s *Users) Registered(ctx context.Context, id int64) bool {
	_, err := s.store.Get(ctx, id)
	return err == nil
}

// Register commits a new profile collected by the registration flow.
// Input fields are validated once more here so the service stays safe
// regardless of the calling flow.
func (s *Users) Register(ctx context.Context, id int64, nickname string, citizenship model.Citizenship, bank string) (*model.User, error) {
	if !model.ValidNickname(nickname) {
		return nil, apperr.NewValidation("nickname", "only latin letters, digits and underscore")
	}
	if _, ok := model.ParseCitizenship(string(citizenship)); !ok {
		return nil, apperr.NewValidation("citizenship", "unknown label")
	}
	u := &model.User{
		ID:          id,
		Nickname:    nickname,
		Citizenship: citizenship,
		BankAccount: bank,
	}
	start := time.Now()
	if err := s.store.Create(ctx, u); err != nil {
		return nil, apperr.WrapStore("register", err)
	}
	logger.SVCUsers.Info("user registered",
		slog.String("event", "users.register"),
		slog.Int64("user_id", id),
		slog.Duration("duration", logger.Took(start)),
	)
	s.notifier.Audit(ctx, "registered", id, nickname)

	// Re-read: a concurrent first registration wins and its row is the
	// source of truth.
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.WrapStore("register", err)
	}
	return stored, nil
}

// UpdateBank replaces the user's bank account string. Free text, no
// validation beyond existence of the profile.
func (s *Users) UpdateBank(ctx context.Context, id int64, bank string) error {
	if err := s.store.UpdateBank(ctx, id, bank); err != nil {
		return apperr.WrapStore("update_bank", err)
	}
	logger.SVCUsers.Debug("bank updated",
		slog.String("event", "users.update_bank"),
		slog.Int64("user_id", id),
	)
	return nil
}

// Count returns the number of registered users.
func (s *Users) Count(ctx context.Context) (int, error) {
	users, err := s.store.All(ctx)
	if err != nil {
		return 0, apperr.WrapStore("count", err)
	}
	return len(users), nil
}

// Top returns up to limit users ordered by total earnings.
func (s *Users) Top(ctx context.Context, limit int) ([]model.User, error) {
	users, err := s.store.TopByEarnings(ctx, limit)
	if err != nil {
		return nil, apperr.WrapStore("top", err)
	}
	return users, nil
}
