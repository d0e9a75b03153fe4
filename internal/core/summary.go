package core

import "github.com/shopspring/decimal"

// Summary is the point-in-time financial overview for one owner. Net worth
// currently equals total assets; liabilities are not modeled.
type Summary struct {
	TotalAssets          decimal.Decimal `json:"total_assets"`
	NetWorth             decimal.Decimal `json:"net_worth"`
	MonthlyFixedIncome   decimal.Decimal `json:"monthly_fixed_income"`
	MonthlyFixedExpenses decimal.Decimal `json:"monthly_fixed_expenses"`
	NetMonthlyCashflow   decimal.Decimal `json:"net_monthly_cashflow"`
	Accounts             []Account       `json:"accounts"`
}

// NetWorthTrend holds the most recent snapshots in chronological order,
// shaped for charting.
type NetWorthTrend struct {
	Labels []string          `json:"labels"` // YYYY-MM per point
	Data   []decimal.Decimal `json:"data"`
}

// CategoryAmount is one row of a per-category aggregation.
type CategoryAmount struct {
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}

// MonthlySummary aggregates one month of actual transactions, splitting
// expenses by the owning category's fixed flag.
type MonthlySummary struct {
	Income           decimal.Decimal `json:"income"`
	FixedExpenses    decimal.Decimal `json:"fixed_expenses"`
	VariableExpenses decimal.Decimal `json:"variable_expenses"`
	NetCashflow      decimal.Decimal `json:"net_cashflow"`
}

// SweepResult reports one recurring-transaction sweep.
type SweepResult struct {
	ProcessedCount int  `json:"processed_count"`
	Date           Date `json:"date"`
}
