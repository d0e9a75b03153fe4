package services

import (
	"testing"

	"finledger/internal/core"
)

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name       string
		dayOfMonth int
		endDate    core.Date
		target     core.Date
		want       bool
	}{
		{
			name:       "matching day - is due",
			dayOfMonth: 5,
			target:     core.NewDate(2024, 5, 5),
			want:       true,
		},
		{
			name:       "different day - not due",
			dayOfMonth: 5,
			target:     core.NewDate(2024, 5, 6),
			want:       false,
		},
		{
			name:       "matching day before end date - is due",
			dayOfMonth: 5,
			endDate:    core.NewDate(2024, 6, 30),
			target:     core.NewDate(2024, 5, 5),
			want:       true,
		},
		{
			name:       "matching day on end date - is due",
			dayOfMonth: 30,
			endDate:    core.NewDate(2024, 6, 30),
			target:     core.NewDate(2024, 6, 30),
			want:       true,
		},
		{
			name:       "matching day after end date - not due",
			dayOfMonth: 5,
			endDate:    core.NewDate(2024, 6, 30),
			target:     core.NewDate(2024, 7, 5),
			want:       false,
		},
		{
			name:       "open ended rule far in the future - is due",
			dayOfMonth: 1,
			target:     core.NewDate(2030, 1, 1),
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := core.RecurringTransaction{
				Frequency:  core.Monthly,
				DayOfMonth: tt.dayOfMonth,
				EndDate:    tt.endDate,
			}
			got := checker.IsDue(rule, tt.target)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	if _, err := GetDuenessChecker(core.Monthly); err != nil {
		t.Fatalf("monthly checker should exist: %v", err)
	}
	for _, f := range []core.Frequency{core.Daily, core.Weekly, core.Yearly} {
		if _, err := GetDuenessChecker(f); err == nil {
			t.Errorf("frequency %q should have no checker yet", f)
		}
	}
}
