package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/storage"
)

const testUserID int64 = 1

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedAccount(t *testing.T, repo *storage.SQLiteRepository, userID int64, balance string) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:  userID,
		Name:    "Test checking",
		Type:    core.Checking,
		Balance: amt(balance),
	})
	require.NoError(t, err)
	return a
}

func seedCategory(t *testing.T, repo *storage.SQLiteRepository, userID int64, name string, catType core.CategoryType, isFixed bool) core.Category {
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

func accountBalance(t *testing.T, repo *storage.SQLiteRepository, userID, id int64) decimal.Decimal {
	t.Helper()
	a, err := repo.GetAccount(context.Background(), userID, id)
	require.NoError(t, err)
	return a.Balance
}
