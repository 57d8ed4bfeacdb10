package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobbot/apperr"
	"jobbot/model"
	"jobbot/storage"
)

// recordingNotifier captures propagation calls for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	created []int64
	changed []int64
	audits  []string
	dms     []string
}

func (n *recordingNotifier) VacancyCreated(_ context.Context, v *model.Vacancy) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, v.ID)
}

func (n *recordingNotifier) VacancyChanged(_ context.Context, id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, id)
}

func (n *recordingNotifier) Audit(_ context.Context, action string, _ int64, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.audits = append(n.audits, action)
}

func (n *recordingNotifier) Notify(_ context.Context, _ int64, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dms = append(n.dms, text)
}

type fixture struct {
	users     *Users
	vacancies *Vacancies
	store     storage.Store
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemory().Store()
	notifier := &recordingNotifier{}
	return &fixture{
		users:     NewUsers(store.Users, notifier),
		vacancies: NewVacancies(store.Vacancies, store.Users, notifier),
		store:     store,
		notifier:  notifier,
	}
}

func (f *fixture) registerUser(t *testing.T, id int64, nickname string) *model.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), id, nickname, model.CitizenshipCapital, "ACC-1")
	require.NoError(t, err)
	return u
}

func (f *fixture) createVacancy(t *testing.T, salary int64) *model.Vacancy {
	t.Helper()
	v, err := f.vacancies.Create(context.Background(), CreateInput{
		Description: "Mine iron",
		Priority:    model.PriorityMedium,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(salary),
		CreatedByID: 1,
	})
	require.NoError(t, err)
	return v
}

func TestCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.createVacancy(t, 150)
	assert.Equal(t, model.StatusOpen, v.Status)
	assert.Equal(t, []int64{v.ID}, f.notifier.created)

	got, err := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine iron", got.Description)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Equal(t, model.CategoryResources, got.Category)
	assert.True(t, got.Salary.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Nil(t, got.AssignedUserID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var vErr *apperr.Validation

	_, err := f.vacancies.Create(ctx, CreateInput{
		Description: "  ",
		Priority:    model.PriorityLow,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(10),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "description", vErr.Field)

	_, err = f.vacancies.Create(ctx, CreateInput{
		Description: "dig",
		Priority:    "Urgent",
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(10),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "priority", vErr.Field)

	_, err = f.vacancies.Create(ctx, CreateInput{
		Description: "dig",
		Priority:    model.PriorityLow,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(-5),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "salary", vErr.Field)

	assert.Empty(t, f.notifier.created)
}

func TestClaimRefuseCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)

	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))
	got, err := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, int64(42), *got.AssignedUserID)

	require.NoError(t, f.vacancies.Refuse(ctx, v.ID, 42))
	got, err = f.vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Nil(t, got.AssignedUserID)
}

func TestClaimSecondJobRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v1 := f.createVacancy(t, 150)
	v2 := f.createVacancy(t, 200)

	require.NoError(t, f.vacancies.Claim(ctx, v1.ID, 42))

	err := f.vacancies.Claim(ctx, v2.ID, 42)
	require.ErrorIs(t, err, apperr.ErrUserBusy)

	got, gerr := f.vacancies.Get(ctx, v2.ID)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Nil(t, got.AssignedUserID)
}

func TestClaimTakenVacancyRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	f.registerUser(t, 43, "miner_2")
	v := f.createVacancy(t, 150)

	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))

	err := f.vacancies.Claim(ctx, v.ID, 43)
	require.ErrorIs(t, err, apperr.ErrVacancyTaken)

	got, gerr := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, gerr)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, int64(42), *got.AssignedUserID)
}

func TestCompleteAndPayOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)

	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))
	require.NoError(t, f.vacancies.Complete(ctx, v.ID, 42, "x:100,y:200"))

	got, err := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.Coords)
	assert.Equal(t, "x:100,y:200", *got.Coords)

	// Completion counts the job but does not credit earnings.
	u, err := f.users.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, u.CompletedJobs)
	assert.True(t, u.TotalEarned.IsZero())

	res, err := f.vacancies.Pay(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.WorkerID)
	assert.True(t, res.Salary.Equal(decimal.NewFromInt(150)))

	u, err = f.users.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.TotalEarned.Equal(decimal.NewFromInt(150)))
	assert.NotEmpty(t, f.notifier.dms)

	// Paying again must conflict and never re-credit.
	_, err = f.vacancies.Pay(ctx, v.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	u, err = f.users.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.TotalEarned.Equal(decimal.NewFromInt(150)))
}

func TestCompleteRequiresCoords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)
	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))

	var vErr *apperr.Validation
	err := f.vacancies.Complete(ctx, v.ID, 42, "   ")
	require.ErrorAs(t, err, &vErr)

	got, gerr := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestCompleteByStranger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	f.registerUser(t, 43, "miner_2")
	v := f.createVacancy(t, 150)
	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))

	err := f.vacancies.Complete(ctx, v.ID, 43, "x:1,y:1")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestDeleteProtectsPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)

	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))
	require.NoError(t, f.vacancies.Complete(ctx, v.ID, 42, "x:1,y:1"))
	_, err := f.vacancies.Pay(ctx, v.ID)
	require.NoError(t, err)

	err = f.vacancies.Delete(ctx, v.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	got, gerr := f.vacancies.Get(ctx, v.ID)
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusPaid, got.Status)
}

func TestDeleteFromAnyNonTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")

	open := f.createVacancy(t, 10)
	require.NoError(t, f.vacancies.Delete(ctx, open.ID, 1))

	claimed := f.createVacancy(t, 20)
	require.NoError(t, f.vacancies.Claim(ctx, claimed.ID, 42))
	require.NoError(t, f.vacancies.Delete(ctx, claimed.ID, 1))

	// Second delete conflicts.
	err := f.vacancies.Delete(ctx, claimed.ID, 1)
	assert.True(t, apperr.IsConflict(err))
}

func TestTransitionsPropagateToMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)

	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))
	require.NoError(t, f.vacancies.Refuse(ctx, v.ID, 42))
	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 42))
	require.NoError(t, f.vacancies.Complete(ctx, v.ID, 42, "x:1,y:1"))
	_, err := f.vacancies.Pay(ctx, v.ID)
	require.NoError(t, err)

	assert.Len(t, f.notifier.changed, 5)
	assert.Len(t, f.notifier.audits, 6) // registration plus five transitions
}

func TestRefuseOpenVacancyConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")
	v := f.createVacancy(t, 150)

	err := f.vacancies.Refuse(ctx, v.ID, 42)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.False(t, errors.Is(err, apperr.ErrUserBusy))
}
