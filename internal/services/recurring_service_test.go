package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/storage"
)

func TestRecurringService_CreateChecksReferences(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, testUserID, "100.00")
	rent := seedCategory(t, repo, testUserID, "Rent", core.CategoryExpense, true)

	valid := core.RecurringTransaction{
		AccountID:  account.ID,
		CategoryID: rent.ID,
		Type:       core.Expense,
		Amount:     amt("800.00"),
		Frequency:  core.Monthly,
		DayOfMonth: 1,
		IsActive:   true,
		StartDate:  core.NewDate(2024, 1, 1),
	}

	created, err := svc.Create(ctx, testUserID, valid)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	bad := valid
	bad.AccountID = 9999
	_, err = svc.Create(ctx, testUserID, bad)
	assert.ErrorIs(t, err, core.ErrAccountNotFound)

	bad = valid
	bad.CategoryID = 9999
	_, err = svc.Create(ctx, testUserID, bad)
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)

	bad = valid
	bad.DayOfMonth = 0
	_, err = svc.Create(ctx, testUserID, bad)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)
}

func TestRecurringService_UpdateAndDeactivate(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, testUserID, "100.00")
	rent := seedCategory(t, repo, testUserID, "Rent", core.CategoryExpense, true)
	rule := seedRule(t, repo, core.RecurringTransaction{
		AccountID:  account.ID,
		CategoryID: rent.ID,
		Type:       core.Expense,
		Amount:     amt("800.00"),
		Frequency:  core.Monthly,
		DayOfMonth: 1,
		IsActive:   true,
		StartDate:  core.NewDate(2024, 1, 1),
		EndDate:    core.NewDate(2024, 12, 31),
	})

	amount := "850.00"
	day := 3
	clearEnd := core.Date{}
	updated, err := svc.Update(ctx, testUserID, rule.ID, storage.RecurringUpdate{
		Amount:     &amount,
		DayOfMonth: &day,
		EndDate:    &clearEnd,
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amt("850.00")))
	assert.Equal(t, 3, updated.DayOfMonth)
	assert.True(t, updated.EndDate.IsZero(), "end date should be cleared")

	badDay := 42
	_, err = svc.Update(ctx, testUserID, rule.ID, storage.RecurringUpdate{DayOfMonth: &badDay})
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)

	require.NoError(t, svc.Deactivate(ctx, testUserID, rule.ID))
	active, err := svc.List(ctx, testUserID, 0)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deactivated rules remain fetchable by id.
	fetched, err := svc.Get(ctx, testUserID, rule.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)
}

func TestRecurringService_DeleteUnknownRule(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewRecurringService(repo)

	err := svc.Delete(context.Background(), testUserID, 404)
	assert.ErrorIs(t, err, core.ErrRecurringNotFound)
}
