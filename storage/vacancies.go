package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"jobbot/core/logger"
	"jobbot/model"
)

// SQLVacancies is the Postgres-backed vacancy repository. Every status
// transition is a single guarded UPDATE; zero affected rows means the
// vacancy was not in the required state and surfaces as ErrNoTransition.
type SQLVacancies struct {
	db *sqlx.DB
}

// NewSQLVacancies wraps the shared connection pool.
func NewSQLVacancies(db *sqlx.DB) *SQLVacancies {
	return &SQLVacancies{db: db}
}

// Create inserts an open vacancy and fills in its assigned id.
func (r *SQLVacancies) Create(ctx context.Context, v *model.Vacancy) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	start := time.Now()
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO vacancies (description, priority, category, salary, status, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		v.Description, v.Priority, v.Category, v.Salary, model.StatusOpen, v.CreatedByID, v.CreatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("create vacancy: %w", err)
	}
	v.Status = model.StatusOpen
	logger.DB.Debug("vacancy created",
		slog.String("event", "db.vacancies.create"),
		slog.Int64("vacancy_id", v.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Get returns a vacancy by id, or ErrNotFound.
func (r *SQLVacancies) Get(ctx context.Context, id int64) (*model.Vacancy, error) {
	var v model.Vacancy
	err := r.db.GetContext(ctx, &v, `SELECT * FROM vacancies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vacancy: %w", err)
	}
	if !v.Status.Valid() {
		return nil, fmt.Errorf("get vacancy: unknown status %q", v.Status)
	}
	return &v, nil
}

// All returns every vacancy, newest first.
func (r *SQLVacancies) All(ctx context.Context) ([]model.Vacancy, error) {
	var vs []model.Vacancy
	err := r.db.SelectContext(ctx, &vs,
		`SELECT * FROM vacancies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	return vs, nil
}

// ActiveByUser returns the user's in-progress vacancies.
func (r *SQLVacancies) ActiveByUser(ctx context.Context, userID int64) ([]model.Vacancy, error) {
	var vs []model.Vacancy
	err := r.db.SelectContext(ctx, &vs, `
		SELECT * FROM vacancies
		WHERE assigned_user_id = $1 AND status = $2
		ORDER BY id`,
		userID, model.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("active vacancies: %w", err)
	}
	return vs, nil
}

// Assign atomically claims an open vacancy for userID. The NOT EXISTS
// guard keeps both invariants inside one statement: the row must still
// be open and the claimer must hold no other in-progress vacancy.
func (r *SQLVacancies) Assign(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vacancies SET status = $1, assigned_user_id = $2
		WHERE id = $3 AND status = $4
		  AND NOT EXISTS (
			SELECT 1 FROM vacancies
			WHERE assigned_user_id = $2 AND status = $1
		  )`,
		model.StatusInProgress, userID, id, model.StatusOpen)
	if err != nil {
		// Two claims racing past the NOT EXISTS guard hit the partial
		// unique index on active assignees. Same outcome as losing the
		// guard itself.
		if isUniqueViolation(err) {
			return ErrNoTransition
		}
		return fmt.Errorf("assign vacancy: %w", err)
	}
	return oneRow(res)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Release moves an in-progress vacancy held by userID back to open.
func (r *SQLVacancies) Release(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vacancies SET status = $1, assigned_user_id = NULL
		WHERE id = $2 AND status = $3 AND assigned_user_id = $4`,
		model.StatusOpen, id, model.StatusInProgress, userID)
	if err != nil {
		return fmt.Errorf("release vacancy: %w", err)
	}
	return oneRow(res)
}

// Complete records the work report: status moves to completed, coords
// are stored and the worker's completed counter grows by one. Earnings
// are not credited here.
func (r *SQLVacancies) Complete(ctx context.Context, id, userID int64, coords string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("complete vacancy: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE vacancies SET status = $1, coords = $2
		WHERE id = $3 AND status = $4 AND assigned_user_id = $5`,
		model.StatusCompleted, coords, id, model.StatusInProgress, userID)
	if err != nil {
		return fmt.Errorf("complete vacancy: %w", err)
	}
	if err := oneRow(res); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET completed_jobs = completed_jobs + 1 WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("complete vacancy: count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("complete vacancy: commit: %w", err)
	}
	return nil
}

// Pay marks a completed vacancy paid and credits its salary to the
// assignee inside one transaction. The status guard makes a repeated
// call a no-op that reports ErrNoTransition, so earnings are credited
// exactly once.
func (r *SQLVacancies) Pay(ctx context.Context, id int64) (int64, decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("pay vacancy: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row struct {
		WorkerID int64           `db:"assigned_user_id"`
		Salary   decimal.Decimal `db:"salary"`
	}
	err = tx.QueryRowxContext(ctx, `
		UPDATE vacancies SET status = $1
		WHERE id = $2 AND status = $3 AND assigned_user_id IS NOT NULL
		RETURNING assigned_user_id, salary`,
		model.StatusPaid, id, model.StatusCompleted,
	).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, decimal.Zero, ErrNoTransition
	}
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("pay vacancy: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET total_earned = total_earned + $1 WHERE id = $2`,
		row.Salary, row.WorkerID)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("pay vacancy: credit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, decimal.Zero, fmt.Errorf("pay vacancy: commit: %w", err)
	}
	return row.WorkerID, row.Salary, nil
}

// SoftDelete marks a vacancy deleted unless it is paid or already gone.
func (r *SQLVacancies) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vacancies SET status = $1
		WHERE id = $2 AND status NOT IN ($3, $4)`,
		model.StatusDeleted, id, model.StatusPaid, model.StatusDeleted)
	if err != nil {
		return fmt.Errorf("delete vacancy: %w", err)
	}
	return oneRow(res)
}

// SetChannelMessage records the mirror post reference.
func (r *SQLVacancies) SetChannelMessage(ctx context.Context, id int64, messageID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vacancies SET channel_message_id = $1 WHERE id = $2`, messageID, id)
	if err != nil {
		return fmt.Errorf("set channel message: %w", err)
	}
	return oneRow(res)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoTransition
	}
	return nil
}
