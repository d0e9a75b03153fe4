package storage

import (
	"context"
	"fmt"
	"time"

	"finledger/internal/core"
)

// monthBounds returns [first of month, first of next month) as date strings.
func monthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format("2006-01-02"), first.AddDate(0, 1, 0).Format("2006-01-02")
}

// CategoryBreakdownCents sums one month of expense transactions for an
// account, grouped by category.
func (r *SQLiteRepository) CategoryBreakdownCents(ctx context.Context, userID, accountID int64, year, month int) ([]core.CategoryAmount, error) {
	from, to := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = ? AND t.account_id = ? AND t.type = 'expense'
		  AND t.transaction_date >= ? AND t.transaction_date < ?
		GROUP BY c.id, c.name
		ORDER BY total DESC`, userID, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var (
			ca    core.CategoryAmount
			cents int64
		)
		if err := rows.Scan(&ca.CategoryID, &ca.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		ca.Amount = core.FromCents(cents)
		out = append(out, ca)
	}
	return out, rows.Err()
}

// MonthlyTransactionSummary aggregates one month of actual transactions
// across all of the user's accounts: income, fixed and variable expenses
// (split on the category's fixed flag), and the resulting net cashflow.
func (r *SQLiteRepository) MonthlyTransactionSummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	from, to := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.type, c.is_fixed, SUM(t.amount_cents)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = ? AND t.transaction_date >= ? AND t.transaction_date < ?
		GROUP BY t.type, c.is_fixed`, userID, from, to)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	defer rows.Close()

	var incomeCents, fixedCents, variableCents int64
	for rows.Next() {
		var (
			txType  string
			isFixed bool
			cents   int64
		)
		if err := rows.Scan(&txType, &isFixed, &cents); err != nil {
			return core.MonthlySummary{}, fmt.Errorf("scan monthly summary: %w", err)
		}
		switch {
		case core.TransactionType(txType) == core.Income:
			incomeCents += cents
		case isFixed:
			fixedCents += cents
		default:
			variableCents += cents
		}
	}
	if err := rows.Err(); err != nil {
		return core.MonthlySummary{}, err
	}

	s := core.MonthlySummary{
		Income:           core.FromCents(incomeCents),
		FixedExpenses:    core.FromCents(fixedCents),
		VariableExpenses: core.FromCents(variableCents),
	}
	s.NetCashflow = s.Income.Sub(s.FixedExpenses.Add(s.VariableExpenses))
	return s, nil
}
