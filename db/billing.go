/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cycleWindow is one billing cycle in civil dates. Start and End are
// midnight on the first and last day of the cycle; the window covers
// End's full day.
type cycleWindow struct {
	Start time.Time
	End   time.Time
}

func (w cycleWindow) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}

// buildCycleWindows generates consecutive billing cycles from the first
// entry date through two months past now. Each cycle ends on billDay;
// billDay is capped at 28 so month arithmetic never clamps.
func buildCycleWindows(first, now time.Time, billDay int) []cycleWindow {
	end := dateForDay(first.Year(), first.Month(), billDay)
	if !first.Before(end.AddDate(0, 0, 1)) {
		end = end.AddDate(0, 1, 0)
	}

	limit := now.AddDate(0, 2, 0)

	var windows []cycleWindow

	for !end.After(limit) {
		start := end.AddDate(0, -1, 0).AddDate(0, 0, 1)
		windows = append(windows, cycleWindow{Start: start, End: end})
		end = end.AddDate(0, 1, 0)
	}

	return windows
}

// membership describes how an entry relates to a billing cycle.
type membership int

const (
	membershipNone membership = iota
	// membershipPrimary: in the cycle by transaction date and billed here.
	membershipPrimary
	// membershipDeferredOut: happened in this cycle but billed in another.
	// Shown for context, excluded from the total.
	membershipDeferredOut
	// membershipDeferredIn: happened in an earlier cycle, billed here.
	// Counted in the total.
	membershipDeferredIn
)

func classifyMembership(e *LedgerEntry, w cycleWindow) membership {
	inByDate := w.contains(e.OccurredAt)
	inByBill := e.BillingAssignment != nil && w.contains(*e.BillingAssignment)

	switch {
	case !inByDate && !inByBill:
		return membershipNone
	case inByDate && !inByBill && e.BillingAssignment != nil:
		return membershipDeferredOut
	case inByBill && !inByDate:
		return membershipDeferredIn
	default:
		return membershipPrimary
	}
}

// isCardPayment reports whether the entry is a repayment of the card from
// another account. Transfers out of the card itself are cash advances and
// stay on the bill.
func isCardPayment(e *LedgerEntry, cardID uuid.UUID) bool {
	return e.Kind == EntryTransfer &&
		e.ToAccountID != nil && *e.ToAccountID == cardID &&
		e.AccountID != cardID
}

// reducesBill reports whether the entry kind reduces a statement total.
func reducesBill(k EntryKind) bool {
	switch k {
	case EntryRefund, EntryReward, EntryDiscount, EntryBalanceAdjustment:
		return true
	}

	return false
}

// BillingEntry is a ledger entry annotated with its role within one
// billing cycle.
type BillingEntry struct {
	LedgerEntry

	DeferredOut bool `json:"deferredOut"`
	DeferredIn  bool `json:"deferredIn"`
	Payment     bool `json:"payment"`
}

// BillingPeriod is one assembled billing cycle of a credit card.
type BillingPeriod struct {
	CycleStart      time.Time           `json:"billingCycleStart"`
	CycleEnd        time.Time           `json:"billingCycleEnd"`
	Entries         []BillingEntry      `json:"entries"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	Status          string              `json:"status"`
	StatementID     *uuid.UUID          `json:"statementId,omitempty"`
	StatementAmount decimal.NullDecimal `json:"statementAmount"`
}

// Reconciliation progress of a billing period.
const (
	PeriodUnreconciled = "unreconciled"
	PeriodPending      = "pending"
	PeriodConfirmed    = "confirmed"
)

// cycleTotal sums the bill for one cycle: deferred-out entries and card
// payments are skipped, credits reduce the bill, everything else adds
// amount plus fee.
func cycleTotal(entries []BillingEntry) decimal.Decimal {
	total := decimal.Zero

	for i := range entries {
		e := &entries[i]
		if e.DeferredOut || e.Payment {
			continue
		}

		if reducesBill(e.Kind) {
			total = total.Sub(e.Amount)
		} else {
			total = total.Add(e.Amount).Add(e.Fee)
		}
	}

	return total.Round(2)
}

// cycleStatus derives the reconciliation status of a cycle from its
// actionable entries. Deferred-out entries are someone else's problem.
func cycleStatus(entries []BillingEntry) string {
	var actionable, checked int

	for i := range entries {
		if entries[i].DeferredOut {
			continue
		}

		actionable++

		if entries[i].Reconciled {
			checked++
		}
	}

	switch {
	case actionable == 0:
		return PeriodConfirmed
	case checked == 0:
		return PeriodUnreconciled
	case checked < actionable:
		return PeriodPending
	default:
		return PeriodConfirmed
	}
}

// assembleBillingPeriods groups a card's entries into billing cycles.
// Only cycles that contain at least one entry are returned, newest first.
func assembleBillingPeriods(cardID uuid.UUID, entries []LedgerEntry, billDay int, now time.Time) []BillingPeriod {
	if len(entries) == 0 {
		return nil
	}

	first := entries[0].OccurredAt
	for i := range entries {
		if entries[i].OccurredAt.Before(first) {
			first = entries[i].OccurredAt
		}
	}

	var periods []BillingPeriod

	for _, w := range buildCycleWindows(first, now, billDay) {
		var members []BillingEntry

		for i := range entries {
			m := classifyMembership(&entries[i], w)
			if m == membershipNone {
				continue
			}

			members = append(members, BillingEntry{
				LedgerEntry: entries[i],
				DeferredOut: m == membershipDeferredOut,
				DeferredIn:  m == membershipDeferredIn,
				Payment:     isCardPayment(&entries[i], cardID),
			})
		}

		if len(members) == 0 {
			continue
		}

		periods = append(periods, BillingPeriod{
			CycleStart:  w.Start,
			CycleEnd:    w.End,
			Entries:     members,
			TotalAmount: cycleTotal(members),
			Status:      cycleStatus(members),
		})
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].CycleEnd.After(periods[j].CycleEnd)
	})

	return periods
}
