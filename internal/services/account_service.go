package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// AccountService manages account records. Balances are touched only by the
// mutation engine; this service edits metadata and guards deletion.
type AccountService struct {
	storage *storage.SQLiteRepository
}

func NewAccountService(storage *storage.SQLiteRepository) *AccountService {
	return &AccountService{storage: storage}
}

func (s *AccountService) List(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.storage.ListAccounts(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID, id int64) (core.Account, error) {
	return s.storage.GetAccount(ctx, userID, id)
}

func (s *AccountService) Create(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("%w: %s", core.ErrInvalidTransaction, err)
	}

	created, err := s.storage.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account created",
		"account_id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"opening_balance", created.Balance)
	return created, nil
}

// Update edits account metadata. The balance is not an editable field.
func (s *AccountService) Update(ctx context.Context, userID, id int64, upd storage.AccountUpdate) (core.Account, error) {
	if upd.Type != nil && !upd.Type.Valid() {
		return core.Account{}, fmt.Errorf("%w: invalid account type", core.ErrInvalidTransaction)
	}
	return s.storage.UpdateAccount(ctx, userID, id, upd)
}

// Delete removes an account and its transactions and recurring rules.
// Fails with core.ErrInsufficientBalance unless the balance is exactly zero.
func (s *AccountService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteAccount(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", id, "user_id", userID)
	return nil
}
