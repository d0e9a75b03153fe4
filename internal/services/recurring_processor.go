package services

import (
	"context"
	"errors"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// RecurringProcessor materializes due recurring rules into real
// transactions through the mutation engine, so automated writes follow the
// exact same path as manual ones.
type RecurringProcessor struct {
	storage            *storage.SQLiteRepository
	transactionService *TransactionService
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, transactionService *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:            storage,
		transactionService: transactionService,
	}
}

// ProcessDue sweeps the user's active rules for targetDate. Each due rule
// becomes one transaction in its own atomic unit; a failing rule is logged
// and skipped so the rest of the sweep completes. Re-running the sweep for
// the same date is a no-op per rule thanks to the materialization
// uniqueness constraint.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, userID int64, targetDate core.Date) (core.SweepResult, error) {
	result := core.SweepResult{Date: targetDate}

	rules, err := p.storage.ListActiveRecurring(ctx, userID, 0)
	if err != nil {
		return result, err
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(rules),
		"target_date", targetDate.String())

	for _, rule := range rules {
		checker, err := GetDuenessChecker(rule.Frequency)
		if err != nil {
			slog.DebugContext(ctx, "Skipping rule with unsupported frequency",
				"recurring_id", rule.ID,
				"frequency", rule.Frequency)
			continue
		}
		if !checker.IsDue(rule, targetDate) {
			continue
		}

		tx := core.Transaction{
			AccountID:   rule.AccountID,
			CategoryID:  rule.CategoryID,
			Type:        rule.Type,
			Amount:      rule.Amount,
			Description: p.autoDescription(ctx, userID, rule),
			Date:        targetDate,
			IsRecurring: true,
			RecurringID: rule.ID,
		}

		created, err := p.transactionService.Create(ctx, userID, tx)
		if errors.Is(err, core.ErrAlreadyMaterialized) {
			slog.InfoContext(ctx, "Rule already materialized for date, skipping",
				"recurring_id", rule.ID,
				"target_date", targetDate.String())
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring transaction",
				"recurring_id", rule.ID,
				"description", rule.Description,
				"error", err)
			continue
		}

		result.ProcessedCount++
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"recurring_id", rule.ID,
			"transaction_id", created.ID,
			"amount", created.Amount,
			"type", created.Type)
	}

	slog.InfoContext(ctx, "Recurring transaction sweep complete",
		"processed", result.ProcessedCount,
		"total_checked", len(rules))

	return result, nil
}

// autoDescription builds the generated transaction's description from the
// rule's own description, falling back to the category name.
func (p *RecurringProcessor) autoDescription(ctx context.Context, userID int64, rule core.RecurringTransaction) string {
	text := rule.Description
	if text == "" {
		if cat, err := p.storage.GetCategory(ctx, userID, rule.CategoryID); err == nil {
			text = cat.Name
		}
	}
	return "[auto] " + text
}
