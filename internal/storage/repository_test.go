package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

const testUserID int64 = 1

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedAccount(t *testing.T, repo *SQLiteRepository, userID int64, balance string) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:  userID,
		Name:    "Checking",
		Type:    core.Checking,
		Balance: amt(balance),
	})
	require.NoError(t, err)
	return a
}

func seedCategory(t *testing.T, repo *SQLiteRepository, userID int64, name string, catType core.CategoryType, isFixed bool) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		UserID:  userID,
		Name:    name,
		Type:    catType,
		IsFixed: isFixed,
	})
	require.NoError(t, err)
	return c
}

func insertTx(t *testing.T, repo *SQLiteRepository, accountID, categoryID int64, txType core.TransactionType, amount, date string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	created, err := repo.InsertTransaction(context.Background(), testUserID, core.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     amt(amount),
		Date:       d,
	})
	require.NoError(t, err)
	return created
}

func TestInsertTransaction_MaterializationIsUniquePerDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, testUserID, "10000.00")
	rent := seedCategory(t, repo, testUserID, "Rent", core.CategoryExpense, true)
	rule, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		AccountID:  account.ID,
		CategoryID: rent.ID,
		Type:       core.Expense,
		Amount:     amt("800.00"),
		Frequency:  core.Monthly,
		DayOfMonth: 1,
		IsActive:   true,
		StartDate:  core.NewDate(2024, 1, 1),
	})
	require.NoError(t, err)

	generated := core.Transaction{
		AccountID:   account.ID,
		CategoryID:  rent.ID,
		Type:        core.Expense,
		Amount:      amt("800.00"),
		Date:        core.NewDate(2024, 5, 1),
		IsRecurring: true,
		RecurringID: rule.ID,
	}

	_, err = repo.InsertTransaction(ctx, testUserID, generated)
	require.NoError(t, err)

	_, err = repo.InsertTransaction(ctx, testUserID, generated)
	require.ErrorIs(t, err, core.ErrAlreadyMaterialized)

	// The rejected insert must roll back its debit too.
	a, err := repo.GetAccount(ctx, testUserID, account.ID)
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(amt("9200.00")), "got %s", a.Balance)

	// A different date for the same rule is fine.
	generated.Date = core.NewDate(2024, 6, 1)
	_, err = repo.InsertTransaction(ctx, testUserID, generated)
	require.NoError(t, err)

	a, err = repo.GetAccount(ctx, testUserID, account.ID)
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(amt("8400.00")), "got %s", a.Balance)
}

func TestInsertTransaction_ManualDuplicatesAllowed(t *testing.T) {
	repo := newTestRepo(t)

	account := seedAccount(t, repo, testUserID, "1000.00")
	food := seedCategory(t, repo, testUserID, "Food", core.CategoryExpense, false)

	// Two identical manual entries on the same day are distinct purchases.
	insertTx(t, repo, account.ID, food.ID, core.Expense, "4.50", "2024-05-01")
	insertTx(t, repo, account.ID, food.ID, core.Expense, "4.50", "2024-05-01")

	list, err := repo.ListTransactions(context.Background(), testUserID, TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListTransactions_Filters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := seedAccount(t, repo, testUserID, "1000.00")
	second := seedAccount(t, repo, testUserID, "1000.00")
	food := seedCategory(t, repo, testUserID, "Food", core.CategoryExpense, false)

	insertTx(t, repo, first.ID, food.ID, core.Expense, "10.00", "2024-04-30")
	insertTx(t, repo, first.ID, food.ID, core.Expense, "20.00", "2024-05-10")
	insertTx(t, repo, second.ID, food.ID, core.Expense, "30.00", "2024-05-20")

	t.Run("by account", func(t *testing.T) {
		list, err := repo.ListTransactions(ctx, testUserID, TransactionFilter{AccountID: second.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].Amount.Equal(amt("30.00")))
	})

	t.Run("by date range", func(t *testing.T) {
		list, err := repo.ListTransactions(ctx, testUserID, TransactionFilter{
			From: core.NewDate(2024, 5, 1),
			To:   core.NewDate(2024, 5, 31),
		})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("limit with newest first", func(t *testing.T) {
		list, err := repo.ListTransactions(ctx, testUserID, TransactionFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "2024-05-20", list[0].Date.String())
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		list, err := repo.ListTransactions(ctx, 2, TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMonthlyTransactionSummary(t *testing.T) {
	repo := newTestRepo(t)

	account := seedAccount(t, repo, testUserID, "10000.00")
	salary := seedCategory(t, repo, testUserID, "Salary", core.CategoryIncome, true)
	rent := seedCategory(t, repo, testUserID, "Rent", core.CategoryExpense, true)
	food := seedCategory(t, repo, testUserID, "Food", core.CategoryExpense, false)

	insertTx(t, repo, account.ID, salary.ID, core.Income, "3000.00", "2024-05-27")
	insertTx(t, repo, account.ID, rent.ID, core.Expense, "1000.00", "2024-05-01")
	insertTx(t, repo, account.ID, food.ID, core.Expense, "200.00", "2024-05-15")
	// Outside the month, must not count.
	insertTx(t, repo, account.ID, food.ID, core.Expense, "999.00", "2024-06-01")
	insertTx(t, repo, account.ID, food.ID, core.Expense, "999.00", "2024-04-30")

	s, err := repo.MonthlyTransactionSummary(context.Background(), testUserID, 2024, 5)
	require.NoError(t, err)
	assert.True(t, s.Income.Equal(amt("3000.00")))
	assert.True(t, s.FixedExpenses.Equal(amt("1000.00")))
	assert.True(t, s.VariableExpenses.Equal(amt("200.00")))
	assert.True(t, s.NetCashflow.Equal(amt("1800.00")))
}

func TestCategoryBreakdown(t *testing.T) {
	repo := newTestRepo(t)

	account := seedAccount(t, repo, testUserID, "10000.00")
	salary := seedCategory(t, repo, testUserID, "Salary", core.CategoryIncome, true)
	rent := seedCategory(t, repo, testUserID, "Rent", core.CategoryExpense, true)
	food := seedCategory(t, repo, testUserID, "Food", core.CategoryExpense, false)

	insertTx(t, repo, account.ID, rent.ID, core.Expense, "800.00", "2024-05-01")
	insertTx(t, repo, account.ID, food.ID, core.Expense, "50.00", "2024-05-02")
	insertTx(t, repo, account.ID, food.ID, core.Expense, "25.00", "2024-05-20")
	// Income never shows up in a spending breakdown.
	insertTx(t, repo, account.ID, salary.ID, core.Income, "3000.00", "2024-05-27")

	breakdown, err := repo.CategoryBreakdownCents(context.Background(), testUserID, account.ID, 2024, 5)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Rent", breakdown[0].Category)
	assert.True(t, breakdown[0].Amount.Equal(amt("800.00")))
	assert.Equal(t, "Food", breakdown[1].Category)
	assert.True(t, breakdown[1].Amount.Equal(amt("75.00")))
}

func TestCategoriesByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedCategory(t, repo, testUserID, "Groceries", core.CategoryExpense, false)

	c, err := repo.GetCategoryByName(ctx, testUserID, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", c.Name)

	_, err = repo.GetCategoryByName(ctx, testUserID, "Missing")
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)

	// Names resolve per owner.
	_, err = repo.GetCategoryByName(ctx, 2, "Groceries")
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
}

func TestCreateCategory_ParentMustExist(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	root := seedCategory(t, repo, testUserID, "Home", core.CategoryExpense, false)

	child, err := repo.CreateCategory(ctx, core.Category{
		UserID:   testUserID,
		Name:     "Utilities",
		Type:     core.CategoryExpense,
		ParentID: root.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, root.ID, child.ParentID)

	_, err = repo.CreateCategory(ctx, core.Category{
		UserID:   testUserID,
		Name:     "Orphan",
		Type:     core.CategoryExpense,
		ParentID: 9999,
	})
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
}

func TestSnapshotsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.InsertSnapshot(ctx, core.AssetSnapshot{
		UserID:          testUserID,
		TotalAssets:     amt("1234.56"),
		NetWorth:        amt("1200.00"),
		AccountsSummary: []byte(`{"checking":"1234.56"}`),
		SnapshotDate:    core.NewDate(2024, 5, 31),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.TotalAssets.Equal(amt("1234.56")))
	assert.Equal(t, "2024-05-31", created.SnapshotDate.String())

	list, err := repo.ListRecentSnapshots(ctx, testUserID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"checking":"1234.56"}`, string(list[0].AccountsSummary))
}
