// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
//
// SPDX-License-Identifier: Apache-2.0
package db

import (
	"testing"
	"time"
)

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestPeriodDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start      time.Time
		index      int
		frequency  PlanFrequency
		paymentDay int
		want       time.Time
	}{
		{
			name:  "monthly first period lands on start month",
			start: utcDate(2025, time.January, 15), index: 0,
			frequency: FrequencyMonthly, paymentDay: 15,
			want: utcDate(2025, time.January, 15),
		},
		{
			name:  "monthly clamps to short february",
			start: utcDate(2025, time.January, 31), index: 1,
			frequency: FrequencyMonthly, paymentDay: 31,
			want: utcDate(2025, time.February, 28),
		},
		{
			name:  "monthly restores payment day after clamp",
			start: utcDate(2025, time.January, 31), index: 2,
			frequency: FrequencyMonthly, paymentDay: 31,
			want: utcDate(2025, time.March, 31),
		},
		{
			name:  "monthly clamps to leap february",
			start: utcDate(2024, time.January, 31), index: 1,
			frequency: FrequencyMonthly, paymentDay: 31,
			want: utcDate(2024, time.February, 29),
		},
		{
			name:  "monthly rolls over the year",
			start: utcDate(2025, time.November, 10), index: 3,
			frequency: FrequencyMonthly, paymentDay: 10,
			want: utcDate(2026, time.February, 10),
		},
		{
			name:  "weekly advances in seven day steps",
			start: utcDate(2025, time.March, 3), index: 3,
			frequency: FrequencyWeekly, paymentDay: 1,
			want: utcDate(2025, time.March, 24),
		},
		{
			name:  "yearly advances by calendar years",
			start: utcDate(2025, time.June, 1), index: 2,
			frequency: FrequencyYearly, paymentDay: 1,
			want: utcDate(2027, time.June, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := periodDate(tt.start, tt.index, tt.frequency, tt.paymentDay)
			if !got.Equal(tt.want) {
				t.Errorf("periodDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodDateNeverOvershootsMonth(t *testing.T) {
	t.Parallel()

	// A plan on the 31st must bill every month, never skipping into the
	// month after a short one.
	start := utcDate(2025, time.January, 31)

	for idx := 0; idx < 24; idx++ {
		got := periodDate(start, idx, FrequencyMonthly, 31)

		wantMonth := time.Month((int(time.January)-1+idx)%12 + 1)
		if got.Month() != wantMonth {
			t.Fatalf("period %d fell in %v, want %v", idx, got.Month(), wantMonth)
		}

		if got.Day() != daysInMonth(got.Year(), got.Month()) && got.Day() != 31 {
			t.Fatalf("period %d landed on day %d", idx, got.Day())
		}
	}
}

func TestPlanTotalPeriods(t *testing.T) {
	t.Parallel()

	now := utcDate(2025, time.June, 15)
	explicit := 24
	zero := 0

	tests := []struct {
		name string
		plan PaymentPlan
		want int
	}{
		{
			name: "explicit total wins",
			plan: PaymentPlan{
				TotalPeriods: &explicit, Frequency: FrequencyMonthly,
				StartDate: utcDate(2025, time.January, 1),
			},
			want: 24,
		},
		{
			name: "zero total falls back to horizon",
			plan: PaymentPlan{
				TotalPeriods: &zero, Frequency: FrequencyMonthly,
				StartDate: utcDate(2025, time.June, 1),
			},
			want: 13,
		},
		{
			name: "monthly covers a year ahead",
			plan: PaymentPlan{
				Frequency: FrequencyMonthly,
				StartDate: utcDate(2025, time.June, 1),
			},
			want: 13,
		},
		{
			name: "weekly covers a year ahead",
			plan: PaymentPlan{
				Frequency: FrequencyWeekly,
				StartDate: utcDate(2025, time.June, 15),
			},
			want: 53,
		},
		{
			name: "yearly counts calendar years",
			plan: PaymentPlan{
				Frequency: FrequencyYearly,
				StartDate: utcDate(2023, time.March, 1),
			},
			want: 4,
		},
		{
			name: "future start still yields one period",
			plan: PaymentPlan{
				Frequency: FrequencyMonthly,
				StartDate: utcDate(2030, time.January, 1),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := planTotalPeriods(&tt.plan, now); got != tt.want {
				t.Errorf("planTotalPeriods() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateForDayClamps(t *testing.T) {
	t.Parallel()

	if got := dateForDay(2025, time.February, 31); !got.Equal(utcDate(2025, time.February, 28)) {
		t.Errorf("dateForDay() = %v, want 2025-02-28", got)
	}

	if got := dateForDay(2024, time.February, 30); !got.Equal(utcDate(2024, time.February, 29)) {
		t.Errorf("dateForDay() = %v, want 2024-02-29", got)
	}
}
