package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// TransactionService is the mutation engine: every write to a transaction
// record carries exactly one paired balance adjustment on the owning
// account, committed atomically by the storage layer.
type TransactionService struct {
	storage *storage.SQLiteRepository
}

func NewTransactionService(storage *storage.SQLiteRepository) *TransactionService {
	return &TransactionService{storage: storage}
}

// Create validates and persists a transaction, applying +amount for income
// and -amount for expense to the owning account. An expense larger than the
// current balance fails with core.ErrInsufficientBalance and leaves the
// balance untouched.
func (s *TransactionService) Create(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrInvalidTransaction, err)
	}
	if _, err := s.storage.GetCategory(ctx, userID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.InsertTransaction(ctx, userID, t)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", created.ID,
		"account_id", created.AccountID,
		"type", created.Type,
		"amount", created.Amount,
		"is_recurring", created.IsRecurring)
	return created, nil
}

// Update amends a transaction in place. Amount or type changes fully
// reverse the old effect before reapplying the new one; the balance is not
// re-checked for sufficiency, amendments are trusted.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, upd storage.TransactionUpdate) (core.Transaction, error) {
	if upd.Type != nil && !upd.Type.Valid() {
		return core.Transaction{}, fmt.Errorf("%w: invalid transaction type", core.ErrInvalidTransaction)
	}
	if upd.CategoryID != nil {
		if _, err := s.storage.GetCategory(ctx, userID, *upd.CategoryID); err != nil {
			return core.Transaction{}, err
		}
	}

	updated, err := s.storage.UpdateTransaction(ctx, userID, id, upd)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", updated.ID,
		"account_id", updated.AccountID,
		"type", updated.Type,
		"amount", updated.Amount)
	return updated, nil
}

// Delete reverses the transaction's balance effect and removes the record.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// MonthlySummary aggregates one month of actual transactions for the user.
func (s *TransactionService) MonthlySummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	return s.storage.MonthlyTransactionSummary(ctx, userID, year, month)
}

// MonthlySpendingByCategory sums one month of an account's expenses per
// category, over [first of month, first of next month).
func (s *TransactionService) MonthlySpendingByCategory(ctx context.Context, userID, accountID int64, year, month int) ([]core.CategoryAmount, error) {
	if _, err := s.storage.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.storage.CategoryBreakdownCents(ctx, userID, accountID, year, month)
}
