package services

import (
	"context"
	"fmt"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/storage"

	"github.com/shopspring/decimal"
)

// SummaryService derives point-in-time views over ledger state. It never
// mutates anything; correctness reduces to the arithmetic below.
type SummaryService struct {
	storage    *storage.SQLiteRepository
	trendCache *cache.TTL[core.NetWorthTrend]
}

func NewSummaryService(storage *storage.SQLiteRepository, trendTTL time.Duration) *SummaryService {
	return &SummaryService{
		storage:    storage,
		trendCache: cache.NewTTL[core.NetWorthTrend](trendTTL),
	}
}

// TotalAssets sums the balances of all accounts owned by userID.
func (s *SummaryService) TotalAssets(ctx context.Context, userID int64) (decimal.Decimal, error) {
	cents, err := s.storage.TotalAssetsCents(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return core.FromCents(cents), nil
}

// MonthlyFixedExpenses sums the user's active monthly expense rules.
func (s *SummaryService) MonthlyFixedExpenses(ctx context.Context, userID int64) (decimal.Decimal, error) {
	cents, err := s.storage.MonthlyRecurringSumCents(ctx, userID, core.Expense)
	if err != nil {
		return decimal.Zero, err
	}
	return core.FromCents(cents), nil
}

// MonthlyFixedIncome sums the user's active monthly income rules.
func (s *SummaryService) MonthlyFixedIncome(ctx context.Context, userID int64) (decimal.Decimal, error) {
	cents, err := s.storage.MonthlyRecurringSumCents(ctx, userID, core.Income)
	if err != nil {
		return decimal.Zero, err
	}
	return core.FromCents(cents), nil
}

// FullSummary combines total assets, recurring monthly flows and the
// account list. Net worth equals total assets until liabilities exist.
func (s *SummaryService) FullSummary(ctx context.Context, userID int64) (core.Summary, error) {
	accounts, err := s.storage.ListAccounts(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	totalAssets, err := s.TotalAssets(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	income, err := s.MonthlyFixedIncome(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	expenses, err := s.MonthlyFixedExpenses(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}

	return core.Summary{
		TotalAssets:          totalAssets,
		NetWorth:             totalAssets,
		MonthlyFixedIncome:   income,
		MonthlyFixedExpenses: expenses,
		NetMonthlyCashflow:   income.Sub(expenses),
		Accounts:             accounts,
	}, nil
}

// NetWorthTrend returns the most recent `months` snapshots in
// chronological order. With no snapshots on record it falls back to a
// single synthetic point built from the current total assets. Snapshot
// rows are write-once, so the result is cached briefly.
func (s *SummaryService) NetWorthTrend(ctx context.Context, userID int64, months int) (core.NetWorthTrend, error) {
	if months <= 0 {
		months = 6
	}

	key := fmt.Sprintf("%d:%d", userID, months)
	if trend, ok := s.trendCache.Get(key); ok {
		return trend, nil
	}

	snapshots, err := s.storage.ListRecentSnapshots(ctx, userID, months)
	if err != nil {
		return core.NetWorthTrend{}, err
	}

	var trend core.NetWorthTrend
	if len(snapshots) == 0 {
		totalAssets, err := s.TotalAssets(ctx, userID)
		if err != nil {
			return core.NetWorthTrend{}, err
		}
		trend = core.NetWorthTrend{
			Labels: []string{time.Now().UTC().Format("2006-01")},
			Data:   []decimal.Decimal{totalAssets},
		}
		return trend, nil // synthetic point reflects live balances, do not cache
	}

	// Listed most recent first; flip to chronological.
	for i := len(snapshots) - 1; i >= 0; i-- {
		trend.Labels = append(trend.Labels, snapshots[i].SnapshotDate.Format("2006-01"))
		trend.Data = append(trend.Data, snapshots[i].NetWorth)
	}

	s.trendCache.Set(key, trend)
	return trend, nil
}
