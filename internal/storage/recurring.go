package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finledger/internal/core"
)

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rec core.RecurringTransaction) (core.RecurringTransaction, error) {
	var endDate any
	if !rec.EndDate.IsZero() {
		endDate = rec.EndDate.String()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO recurring_transactions
			(account_id, category_id, type, amount_cents, description, frequency, day_of_month, is_active, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, account_id, category_id, type, amount_cents, description, frequency, day_of_month, is_active, start_date, end_date, created_at, updated_at`,
		rec.AccountID, rec.CategoryID, string(rec.Type), core.Cents(rec.Amount), rec.Description,
		string(rec.Frequency), rec.DayOfMonth, rec.IsActive, rec.StartDate.String(), endDate)

	created, err := scanRecurring(row)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	return created, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, userID, id int64) (core.RecurringTransaction, error) {
	row := r.db.QueryRowContext(ctx, recurringSelect+`
		WHERE rt.id = ? AND a.user_id = ?`, id, userID)
	rec, err := scanRecurring(row)
	if err == sql.ErrNoRows {
		return core.RecurringTransaction{}, core.ErrRecurringNotFound
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring transaction: %w", err)
	}
	return rec, nil
}

// ListActiveRecurring returns the user's active rules, optionally narrowed
// to one account (accountID 0 means all).
func (r *SQLiteRepository) ListActiveRecurring(ctx context.Context, userID, accountID int64) ([]core.RecurringTransaction, error) {
	query := recurringSelect + ` WHERE a.user_id = ? AND rt.is_active = 1`
	args := []any{userID}
	if accountID != 0 {
		query += ` AND rt.account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY rt.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecurringUpdate carries the optional fields of a recurring-rule patch.
type RecurringUpdate struct {
	Amount     *string // two-decimal amount, parsed with core.ParseAmount
	DayOfMonth *int
	IsActive   *bool
	EndDate    *core.Date // zero Date clears the end date
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, userID, id int64, upd RecurringUpdate) (core.RecurringTransaction, error) {
	var updated core.RecurringTransaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, recurringSelect+`
			WHERE rt.id = ? AND a.user_id = ?`, id, userID)
		rec, err := scanRecurring(row)
		if err == sql.ErrNoRows {
			return core.ErrRecurringNotFound
		}
		if err != nil {
			return fmt.Errorf("load recurring transaction: %w", err)
		}

		if upd.Amount != nil {
			amount, err := core.ParseAmount(*upd.Amount)
			if err != nil {
				return err
			}
			rec.Amount = amount
		}
		if upd.DayOfMonth != nil {
			rec.DayOfMonth = *upd.DayOfMonth
		}
		if upd.IsActive != nil {
			rec.IsActive = *upd.IsActive
		}
		if upd.EndDate != nil {
			rec.EndDate = *upd.EndDate
		}

		var endDate any
		if !rec.EndDate.IsZero() {
			endDate = rec.EndDate.String()
		}
		row = tx.QueryRowContext(ctx, `
			UPDATE recurring_transactions
			SET amount_cents = ?, day_of_month = ?, is_active = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
			RETURNING id, account_id, category_id, type, amount_cents, description, frequency, day_of_month, is_active, start_date, end_date, created_at, updated_at`,
			core.Cents(rec.Amount), rec.DayOfMonth, rec.IsActive, endDate, id)
		updated, err = scanRecurring(row)
		if err != nil {
			return fmt.Errorf("update recurring transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	return updated, nil
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM recurring_transactions
		WHERE id = ? AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	if n == 0 {
		return core.ErrRecurringNotFound
	}
	return nil
}

// MonthlyRecurringSumCents sums active monthly rules of one type across all
// of the user's accounts, the proxy for recurring monthly cash flow.
func (r *SQLiteRepository) MonthlyRecurringSumCents(ctx context.Context, userID int64, txType core.TransactionType) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT SUM(rt.amount_cents)
		FROM recurring_transactions rt JOIN accounts a ON a.id = rt.account_id
		WHERE a.user_id = ? AND rt.type = ? AND rt.is_active = 1 AND rt.frequency = 'monthly'`,
		userID, string(txType)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum monthly recurring: %w", err)
	}
	return total.Int64, nil
}

const recurringSelect = `
	SELECT rt.id, rt.account_id, rt.category_id, rt.type, rt.amount_cents, rt.description,
	       rt.frequency, rt.day_of_month, rt.is_active, rt.start_date, rt.end_date,
	       rt.created_at, rt.updated_at
	FROM recurring_transactions rt JOIN accounts a ON a.id = rt.account_id`

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		rec         core.RecurringTransaction
		txType      string
		frequency   string
		amountCents int64
		dayOfMonth  sql.NullInt64
		startDate   string
		endDate     sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.AccountID, &rec.CategoryID, &txType, &amountCents,
		&rec.Description, &frequency, &dayOfMonth, &rec.IsActive, &startDate, &endDate,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	rec.Type = core.TransactionType(txType)
	rec.Frequency = core.Frequency(frequency)
	rec.Amount = core.FromCents(amountCents)
	if dayOfMonth.Valid {
		rec.DayOfMonth = int(dayOfMonth.Int64)
	}
	rec.StartDate, err = core.ParseDate(startDate)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	if endDate.Valid && endDate.String != "" {
		rec.EndDate, err = core.ParseDate(endDate.String)
		if err != nil {
			return core.RecurringTransaction{}, fmt.Errorf("parse end date %q: %w", endDate.String, err)
		}
	}
	return rec, nil
}
