package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// RecurringService manages recurring-transaction rules. The scheduler only
// reads them (and the active flag); all edits go through here.
type RecurringService struct {
	storage *storage.SQLiteRepository
}

func NewRecurringService(storage *storage.SQLiteRepository) *RecurringService {
	return &RecurringService{storage: storage}
}

// List returns the user's active rules, optionally for one account.
func (s *RecurringService) List(ctx context.Context, userID, accountID int64) ([]core.RecurringTransaction, error) {
	return s.storage.ListActiveRecurring(ctx, userID, accountID)
}

func (s *RecurringService) Get(ctx context.Context, userID, id int64) (core.RecurringTransaction, error) {
	return s.storage.GetRecurring(ctx, userID, id)
}

func (s *RecurringService) Create(ctx context.Context, userID int64, rec core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rec.Validate(); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %s", core.ErrInvalidTransaction, err)
	}
	if _, err := s.storage.GetAccount(ctx, userID, rec.AccountID); err != nil {
		return core.RecurringTransaction{}, err
	}
	if _, err := s.storage.GetCategory(ctx, userID, rec.CategoryID); err != nil {
		return core.RecurringTransaction{}, err
	}

	created, err := s.storage.CreateRecurring(ctx, rec)
	if err != nil {
		return core.RecurringTransaction{}, err
	}

	slog.InfoContext(ctx, "Recurring transaction created",
		"recurring_id", created.ID,
		"account_id", created.AccountID,
		"frequency", created.Frequency,
		"day_of_month", created.DayOfMonth)
	return created, nil
}

func (s *RecurringService) Update(ctx context.Context, userID, id int64, upd storage.RecurringUpdate) (core.RecurringTransaction, error) {
	if upd.DayOfMonth != nil && (*upd.DayOfMonth < 1 || *upd.DayOfMonth > 31) {
		return core.RecurringTransaction{}, fmt.Errorf("%w: day of month must be between 1 and 31", core.ErrInvalidTransaction)
	}
	return s.storage.UpdateRecurring(ctx, userID, id, upd)
}

// Deactivate turns a rule off without deleting its history.
func (s *RecurringService) Deactivate(ctx context.Context, userID, id int64) error {
	inactive := false
	_, err := s.storage.UpdateRecurring(ctx, userID, id, storage.RecurringUpdate{IsActive: &inactive})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring transaction deactivated", "recurring_id", id)
	return nil
}

func (s *RecurringService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteRecurring(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring transaction deleted", "recurring_id", id)
	return nil
}
