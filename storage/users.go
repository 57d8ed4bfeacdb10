package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"jobbot/core/logger"
	"jobbot/model"
)

// SQLUsers is the Postgres-backed user repository.
type SQLUsers struct {
	db *sqlx.DB
}

// NewSQLUsers wraps the shared connection pool.
func NewSQLUsers(db *sqlx.DB) *SQLUsers {
	return &SQLUsers{db: db}
}

// Get returns a user by Telegram id, or ErrNotFound.
func (r *SQLUsers) Get(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user; a duplicate id is a silent no-op.
func (r *SQLUsers) Create(ctx context.Context, u *model.User) error {
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	start := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, nickname, citizenship, bank_account, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Nickname, u.Citizenship, u.BankAccount, u.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	logger.DB.Debug("user created",
		slog.String("event", "db.users.create"),
		slog.Int64("user_id", u.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// UpdateBank replaces the bank account string.
func (r *SQLUsers) UpdateBank(ctx context.Context, id int64, bank string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET bank_account = $1 WHERE id = $2`, bank, id)
	if err != nil {
		return fmt.Errorf("update bank: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every registered user.
func (r *SQLUsers) All(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, `SELECT * FROM users`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// TopByEarnings returns up to limit users ordered by total earned.
func (r *SQLUsers) TopByEarnings(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users ORDER BY total_earned DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	return users, nil
}
