/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"math"
	"time"
)

// schedulingHorizonMonths is how far ahead open-ended recurring plans are
// materialized.
const schedulingHorizonMonths = 12

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateForDay returns midnight UTC on the given day of the month, clamping
// the day to the month's length.
func dateForDay(year int, month time.Month, day int) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// periodDate returns the due date of the zero-based periodIndex-th
// occurrence of a plan.
//
// Monthly plans fall on paymentDay, clamped to short months (a plan on
// the 31st bills on Feb 28). Weekly plans advance in exact 7-day steps
// and yearly plans by calendar years from the start date.
func periodDate(start time.Time, periodIndex int, frequency PlanFrequency, paymentDay int) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*periodIndex)
	case FrequencyYearly:
		return start.AddDate(periodIndex, 0, 0)
	default:
		target := time.Date(start.Year(), start.Month()+time.Month(periodIndex), 1, 0, 0, 0, 0, time.UTC)

		return dateForDay(target.Year(), target.Month(), paymentDay)
	}
}

// planTotalPeriods returns how many periods the plan should materialize.
// An explicit positive total wins; otherwise enough periods are generated
// to reach the scheduling horizon, with a floor of one.
func planTotalPeriods(plan *PaymentPlan, now time.Time) int {
	if plan.TotalPeriods != nil && *plan.TotalPeriods > 0 {
		return *plan.TotalPeriods
	}

	horizon := now.AddDate(0, schedulingHorizonMonths, 0)

	var periods int

	switch plan.Frequency {
	case FrequencyWeekly:
		periods = int(math.Ceil(horizon.Sub(plan.StartDate).Hours() / (24 * 7)))
	case FrequencyYearly:
		periods = horizon.Year() - plan.StartDate.Year() + 1
	default:
		periods = (horizon.Year()-plan.StartDate.Year())*12 +
			int(horizon.Month()) - int(plan.StartDate.Month()) + 1
	}

	if periods < 1 {
		periods = 1
	}

	return periods
}
