package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finledger/internal/core"
)

// applyDelta shifts an account balance in place. The increment happens in
// SQL, so concurrent mutations against the same account serialize at the
// store instead of racing through a read-modify-write.
func applyDelta(ctx context.Context, tx *sql.Tx, accountID, deltaCents int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance_cents = balance_cents + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, deltaCents, accountID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

// applyGuardedDebit decrements an account balance only when enough funds
// remain. The sufficiency check and the decrement are a single statement.
func applyGuardedDebit(ctx context.Context, tx *sql.Tx, accountID, amountCents int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance_cents = balance_cents - ?1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?2 AND balance_cents >= ?1`, amountCents, accountID)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = ?)`, accountID).Scan(&exists); err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return core.ErrAccountNotFound
	}
	return core.ErrInsufficientBalance
}

// InsertTransaction persists a transaction and applies its signed effect to
// the owning account as one unit. Expenses use a guarded debit so they can
// never drive the balance negative.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	var created core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM accounts WHERE id = ?`, t.AccountID).Scan(&owner)
		if err == sql.ErrNoRows || (err == nil && owner != userID) {
			return core.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("check account owner: %w", err)
		}

		amountCents := core.Cents(t.Amount)
		if t.Type == core.Expense {
			if err := applyGuardedDebit(ctx, tx, t.AccountID, amountCents); err != nil {
				return err
			}
		} else {
			if err := applyDelta(ctx, tx, t.AccountID, amountCents); err != nil {
				return err
			}
		}

		var recurringID any
		if t.RecurringID != 0 {
			recurringID = t.RecurringID
		}
		row := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (account_id, category_id, type, amount_cents, description, transaction_date, is_recurring, recurring_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id, account_id, category_id, type, amount_cents, description, transaction_date, is_recurring, recurring_id, created_at`,
			t.AccountID, t.CategoryID, string(t.Type), amountCents, t.Description,
			t.Date.String(), t.IsRecurring, recurringID)
		created, err = scanTransaction(row)
		if isUniqueViolation(err) {
			return core.ErrAlreadyMaterialized
		}
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return created, nil
}

// TransactionUpdate carries the optional fields of a transaction patch.
type TransactionUpdate struct {
	CategoryID  *int64
	Type        *core.TransactionType
	Amount      *string // two-decimal amount, parsed with core.ParseAmount
	Description *string
	Date        *core.Date
}

// UpdateTransaction amends a transaction in place. When the amount or type
// changes, the old signed effect is fully reversed and the new one applied
// as two separate adjustments bracketing the record update; a net delta
// would get the sign wrong on income/expense flips.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id int64, upd TransactionUpdate) (core.Transaction, error) {
	var updated core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		next := old
		if upd.CategoryID != nil {
			next.CategoryID = *upd.CategoryID
		}
		if upd.Type != nil {
			next.Type = *upd.Type
		}
		if upd.Amount != nil {
			amount, err := core.ParseAmount(*upd.Amount)
			if err != nil {
				return err
			}
			next.Amount = amount
		}
		if upd.Description != nil {
			next.Description = *upd.Description
		}
		if upd.Date != nil {
			next.Date = *upd.Date
		}

		effectChanged := upd.Amount != nil || upd.Type != nil

		if effectChanged {
			reverse := old.Type.Signed(old.Amount).Neg()
			if err := applyDelta(ctx, tx, old.AccountID, core.Cents(reverse)); err != nil {
				return err
			}
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE transactions
			SET category_id = ?, type = ?, amount_cents = ?, description = ?, transaction_date = ?
			WHERE id = ?
			RETURNING id, account_id, category_id, type, amount_cents, description, transaction_date, is_recurring, recurring_id, created_at`,
			next.CategoryID, string(next.Type), core.Cents(next.Amount), next.Description,
			next.Date.String(), id)
		updated, err = scanTransaction(row)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		if effectChanged {
			reapply := next.Type.Signed(next.Amount)
			if err := applyDelta(ctx, tx, old.AccountID, core.Cents(reapply)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction reverses the transaction's effect on the account and
// removes the record, symmetric to InsertTransaction.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		reverse := old.Type.Signed(old.Amount).Neg()
		if err := applyDelta(ctx, tx, old.AccountID, core.Cents(reverse)); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.account_id, t.category_id, t.type, t.amount_cents, t.description,
		       t.transaction_date, t.is_recurring, t.recurring_id, t.created_at
		FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND a.user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, userID, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT t.id, t.account_id, t.category_id, t.type, t.amount_cents, t.description,
		       t.transaction_date, t.is_recurring, t.recurring_id, t.created_at
		FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND a.user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// Limit falls back to 100.
type TransactionFilter struct {
	AccountID int64
	From      core.Date
	To        core.Date
	Limit     int
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.category_id, t.type, t.amount_cents, t.description,
		       t.transaction_date, t.is_recurring, t.recurring_id, t.created_at
		FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ?`
	args := []any{userID}

	if f.AccountID != 0 {
		query += ` AND t.account_id = ?`
		args = append(args, f.AccountID)
	}
	if !f.From.IsZero() {
		query += ` AND t.transaction_date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND t.transaction_date <= ?`
		args = append(args, f.To.String())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY t.transaction_date DESC, t.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		txType      string
		amountCents int64
		dateStr     string
		recurringID sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &txType, &amountCents,
		&t.Description, &dateStr, &t.IsRecurring, &recurringID, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(txType)
	t.Amount = core.FromCents(amountCents)
	t.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	if recurringID.Valid {
		t.RecurringID = recurringID.Int64
	}
	return t, nil
}
