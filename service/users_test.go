package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobbot/apperr"
	"jobbot/model"
	"jobbot/storage"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var vErr *apperr.Validation

	_, err := f.users.Register(ctx, 42, "bad name!", model.CitizenshipCapital, "ACC-1")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "nickname", vErr.Field)
	assert.False(t, f.users.Registered(ctx, 42))

	_, err = f.users.Register(ctx, 42, "bad_name1", "Martian", "ACC-1")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "citizenship", vErr.Field)

	u, err := f.users.Register(ctx, 42, "bad_name1", model.CitizenshipCapital, "ACC-1")
	require.NoError(t, err)
	assert.Equal(t, "bad_name1", u.Nickname)
	assert.True(t, f.users.Registered(ctx, 42))
}

func TestRegisterFirstWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.Register(ctx, 42, "miner_1", model.CitizenshipCapital, "ACC-1")
	require.NoError(t, err)

	second, err := f.users.Register(ctx, 42, "impostor", model.CitizenshipAntegrian, "ACC-2")
	require.NoError(t, err)
	assert.Equal(t, first.Nickname, second.Nickname)
	assert.Equal(t, first.BankAccount, second.BankAccount)
}

func TestUpdateBank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 42, "miner_1")

	require.NoError(t, f.users.UpdateBank(ctx, 42, "ACC-NEW"))
	u, err := f.users.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ACC-NEW", u.BankAccount)
}

func TestGetUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Get(context.Background(), 999)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCountAndTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerUser(t, 1, "low_earner")
	f.registerUser(t, 2, "high_earner")

	v := f.createVacancy(t, 500)
	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 2))
	require.NoError(t, f.vacancies.Complete(ctx, v.ID, 2, "x:1,y:1"))
	_, err := f.vacancies.Pay(ctx, v.ID)
	require.NoError(t, err)

	count, err := f.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	top, err := f.users.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high_earner", top[0].Nickname)

	top, err = f.users.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "high_earner", top[0].Nickname)
}
