package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"jobbot/model"
)

// Memory is an in-process store with the same conditional-update
// semantics as the SQL repositories. It backs tests and local runs
// without Postgres. Both repositories share one mutex, so the guarded
// transitions are atomic exactly like their single-statement SQL
// counterparts.
type Memory struct {
	mu        sync.Mutex
	users     map[int64]*model.User
	vacancies map[int64]*model.Vacancy
	nextID    int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int64]*model.User),
		vacancies: make(map[int64]*model.Vacancy),
		nextID:    1,
	}
}

// Store returns the repository bundle backed by this instance.
func (m *Memory) Store() Store {
	return Store{Users: &memUsers{m}, Vacancies: &memVacancies{m}}
}

type memUsers struct{ m *Memory }

func (r *memUsers) Get(_ context.Context, id int64) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Create(_ context.Context, u *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.users[u.ID]; exists {
		// first registration wins
		return nil
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

func (r *memUsers) UpdateBank(_ context.Context, id int64, bank string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.BankAccount = bank
	return nil
}

func (r *memUsers) All(_ context.Context) ([]model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]model.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) TopByEarnings(ctx context.Context, limit int) ([]model.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalEarned.GreaterThan(users[j].TotalEarned)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

type memVacancies struct{ m *Memory }

func (r *memVacancies) Create(_ context.Context, v *model.Vacancy) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.ID = r.m.nextID
	r.m.nextID++
	v.Status = model.StatusOpen
	cp := *v
	r.m.vacancies[v.ID] = &cp
	return nil
}

func (r *memVacancies) Get(_ context.Context, id int64) (*model.Vacancy, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVacancies) All(_ context.Context) ([]model.Vacancy, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]model.Vacancy, 0, len(r.m.vacancies))
	for _, v := range r.m.vacancies {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memVacancies) ActiveByUser(_ context.Context, userID int64) ([]model.Vacancy, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Vacancy
	for _, v := range r.m.vacancies {
		if v.Status == model.StatusInProgress && v.AssignedUserID != nil && *v.AssignedUserID == userID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memVacancies) Assign(_ context.Context, id, userID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok || v.Status != model.StatusOpen {
		return ErrNoTransition
	}
	for _, other := range r.m.vacancies {
		if other.Status == model.StatusInProgress && other.AssignedUserID != nil && *other.AssignedUserID == userID {
			return ErrNoTransition
		}
	}
	uid := userID
	v.Status = model.StatusInProgress
	v.AssignedUserID = &uid
	return nil
}

func (r *memVacancies) Release(_ context.Context, id, userID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok || v.Status != model.StatusInProgress || v.AssignedUserID == nil || *v.AssignedUserID != userID {
		return ErrNoTransition
	}
	v.Status = model.StatusOpen
	v.AssignedUserID = nil
	return nil
}

func (r *memVacancies) Complete(_ context.Context, id, userID int64, coords string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok || v.Status != model.StatusInProgress || v.AssignedUserID == nil || *v.AssignedUserID != userID {
		return ErrNoTransition
	}
	v.Status = model.StatusCompleted
	c := coords
	v.Coords = &c
	if u, ok := r.m.users[userID]; ok {
		u.CompletedJobs++
	}
	return nil
}

func (r *memVacancies) Pay(_ context.Context, id int64) (int64, decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok || v.Status != model.StatusCompleted || v.AssignedUserID == nil {
		return 0, decimal.Zero, ErrNoTransition
	}
	v.Status = model.StatusPaid
	workerID := *v.AssignedUserID
	if u, ok := r.m.users[workerID]; ok {
		u.TotalEarned = u.TotalEarned.Add(v.Salary)
	}
	return workerID, v.Salary, nil
}

func (r *memVacancies) SoftDelete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok || v.Status.Terminal() {
		return ErrNoTransition
	}
	v.Status = model.StatusDeleted
	return nil
}

func (r *memVacancies) SetChannelMessage(_ context.Context, id int64, messageID int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vacancies[id]
	if !ok {
		return ErrNoTransition
	}
	mid := messageID
	v.ChannelMessageID = &mid
	return nil
}
