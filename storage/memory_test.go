package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobbot/model"
)

func seedVacancy(t *testing.T, s Store) *model.Vacancy {
	t.Helper()
	v := &model.Vacancy{
		Description: "Mine iron",
		Priority:    model.PriorityMedium,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(150),
		CreatedByID: 1,
	}
	require.NoError(t, s.Vacancies.Create(context.Background(), v))
	return v
}

func seedUser(t *testing.T, s Store, id int64) {
	t.Helper()
	require.NoError(t, s.Users.Create(context.Background(), &model.User{
		ID:          id,
		Nickname:    "worker",
		Citizenship: model.CitizenshipCapital,
		BankAccount: "ACC",
	}))
}

func TestAssignGuards(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	seedUser(t, s, 42)
	v1 := seedVacancy(t, s)
	v2 := seedVacancy(t, s)

	require.NoError(t, s.Vacancies.Assign(ctx, v1.ID, 42))

	// Same vacancy again, any user.
	assert.ErrorIs(t, s.Vacancies.Assign(ctx, v1.ID, 43), ErrNoTransition)
	// Same user, another vacancy.
	assert.ErrorIs(t, s.Vacancies.Assign(ctx, v2.ID, 42), ErrNoTransition)
	// Unknown vacancy.
	assert.ErrorIs(t, s.Vacancies.Assign(ctx, 999, 42), ErrNoTransition)
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	v := seedVacancy(t, s)

	const claimers = 32
	var wg sync.WaitGroup
	wins := make(chan int64, claimers)
	for i := 0; i < claimers; i++ {
		userID := int64(100 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Vacancies.Assign(ctx, v.ID, userID); err == nil {
				wins <- userID
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	got, err := s.Vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, winners[0], *got.AssignedUserID)
}

func TestReleaseRequiresAssignee(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	v := seedVacancy(t, s)

	assert.ErrorIs(t, s.Vacancies.Release(ctx, v.ID, 42), ErrNoTransition)

	require.NoError(t, s.Vacancies.Assign(ctx, v.ID, 42))
	assert.ErrorIs(t, s.Vacancies.Release(ctx, v.ID, 43), ErrNoTransition)
	require.NoError(t, s.Vacancies.Release(ctx, v.ID, 42))

	got, err := s.Vacancies.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Nil(t, got.AssignedUserID)
}

func TestPayCreditsExactlyOnce(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	seedUser(t, s, 42)
	v := seedVacancy(t, s)

	require.NoError(t, s.Vacancies.Assign(ctx, v.ID, 42))
	require.NoError(t, s.Vacancies.Complete(ctx, v.ID, 42, "x:1,y:1"))

	workerID, salary, err := s.Vacancies.Pay(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), workerID)
	assert.True(t, salary.Equal(decimal.NewFromInt(150)))

	_, _, err = s.Vacancies.Pay(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNoTransition)

	u, err := s.Users.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.TotalEarned.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, u.CompletedJobs)
}

func TestSoftDeleteGuards(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	v := seedVacancy(t, s)

	require.NoError(t, s.Vacancies.SoftDelete(ctx, v.ID))
	assert.ErrorIs(t, s.Vacancies.SoftDelete(ctx, v.ID), ErrNoTransition)
}

func TestUserCreateFirstWins(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	seedUser(t, s, 42)

	require.NoError(t, s.Users.Create(ctx, &model.User{ID: 42, Nickname: "impostor"}))
	u, err := s.Users.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "worker", u.Nickname)
}

func TestAllNewestFirst(t *testing.T) {
	s := NewMemory().Store()
	ctx := context.Background()
	v1 := seedVacancy(t, s)
	v2 := seedVacancy(t, s)

	all, err := s.Vacancies.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Equal timestamps fall back to id ordering, newest first.
	assert.Equal(t, v2.ID, all[0].ID)
	assert.Equal(t, v1.ID, all[1].ID)
}
