// Package services holds the ledger's business logic: the transaction
// mutation engine, the recurring-transaction scheduler and the read-only
// aggregation views.
package services

import (
	"fmt"

	"finledger/internal/core"
)

// DuenessChecker decides whether a recurring rule must materialize on a
// target date. One implementation per frequency.
type DuenessChecker interface {
	IsDue(rule core.RecurringTransaction, target core.Date) bool
}

// MonthlyChecker implements DuenessChecker for monthly rules.
type MonthlyChecker struct{}

// IsDue returns true when the rule's anchor day matches the target date and
// the rule has not expired. An unset end date means the rule runs forever.
func (MonthlyChecker) IsDue(rule core.RecurringTransaction, target core.Date) bool {
	if rule.DayOfMonth != target.Day() {
		return false
	}
	if !rule.EndDate.IsZero() && target.After(rule.EndDate.Time) {
		return false
	}
	return true
}

// duenessStrategies maps frequencies to their checkers. Daily, weekly and
// yearly rules are accepted as data but have no checker yet: the sweep
// skips them until one is registered here.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Monthly: MonthlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error when
// the frequency does not materialize yet.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: frequency %q has no dueness checker", core.ErrInvalidTransaction, frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker adds or replaces the checker for a frequency.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
