// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestGetCashflowReport(t *testing.T) {
	resetDatabase(t)

	checking := mustCreatePhysicalAccount(t, "Checking", decimal.NewFromInt(2000))
	card := mustCreateCreditAccount(t, "Visa", 15, 5)

	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryIncome, Amount: dec("3000"), Category: "salary",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 5),
	})
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("500"), Category: "groceries",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 10),
	})
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryPayable, Amount: dec("120"), Category: "debts",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 20),
	})

	// Card spend inside the billing window whose bill is due in June
	mustCreateExpense(t, card.ID, "400", utcDate(2025, time.May, 1))
	// Card spend in June itself belongs to a later bill
	mustCreateExpense(t, card.ID, "200", utcDate(2025, time.June, 1))

	report, err := GetCashflowReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build cashflow report: %v", err)
	}

	if !report.OpeningBalance.Equal(dec("2000")) {
		t.Errorf("opening balance = %s, want 2000", report.OpeningBalance)
	}

	if !report.ClosingBalance.Equal(dec("4380")) {
		t.Errorf("closing balance = %s, want 4380", report.ClosingBalance)
	}

	if !report.TotalIncome.Equal(dec("3000")) {
		t.Errorf("total income = %s, want 3000", report.TotalIncome)
	}

	if !report.DirectTotal.Equal(dec("500")) {
		t.Errorf("direct total = %s, want 500", report.DirectTotal)
	}

	if !report.FixedTotal.Equal(dec("120")) {
		t.Errorf("fixed total = %s, want 120", report.FixedTotal)
	}

	if len(report.CreditCardBills) != 1 {
		t.Fatalf("got %d credit card bills, want 1", len(report.CreditCardBills))
	}

	bill := report.CreditCardBills[0]
	if !bill.BillAmount.Equal(dec("400")) {
		t.Errorf("bill amount = %s, want 400", bill.BillAmount)
	}

	if !bill.Estimated {
		t.Error("bill without a saved statement must be estimated")
	}

	if bill.DueDate != "2025-06-05" {
		t.Errorf("bill due date = %q, want 2025-06-05", bill.DueDate)
	}

	if !report.TotalExpenses.Equal(dec("1020")) {
		t.Errorf("total expenses = %s, want 1020", report.TotalExpenses)
	}

	if !report.Net.Equal(dec("2380")) {
		t.Errorf("net = %s, want 2380", report.Net)
	}

	if report.Status != CashflowOK {
		t.Errorf("status = %q, want ok", report.Status)
	}

	if len(report.DailyBalance) != 30 {
		t.Fatalf("got %d daily balances, want 30", len(report.DailyBalance))
	}

	last := report.DailyBalance[len(report.DailyBalance)-1]
	if !last.RunningBalance.Equal(dec("4380")) {
		t.Errorf("final running balance = %s, want 4380", last.RunningBalance)
	}

	// Daily replay ties out with the closing balance
	if !last.RunningBalance.Equal(report.ClosingBalance) {
		t.Errorf("running balance %s does not tie out with closing %s",
			last.RunningBalance, report.ClosingBalance)
	}
}

func TestGetCashflowReportPrefersSavedStatement(t *testing.T) {
	resetDatabase(t)

	card := mustCreateCreditAccount(t, "Visa", 15, 5)

	e1 := mustCreateExpense(t, card.ID, "400", utcDate(2025, time.May, 1))
	mustCreateExpense(t, card.ID, "100", utcDate(2025, time.May, 10))

	// Reconcile only part of the window; the saved statement amount wins
	// over the raw window estimate.
	_, err := SaveReconciliation(testContext(), SaveReconciliationInput{
		AccountID:    card.ID,
		CycleStart:   utcDate(2025, time.April, 16),
		CycleEnd:     utcDate(2025, time.May, 15),
		ConfirmedIDs: []uuid.UUID{e1.ID},
	})
	if err != nil {
		t.Fatalf("failed to save reconciliation: %v", err)
	}

	report, err := GetCashflowReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build cashflow report: %v", err)
	}

	if len(report.CreditCardBills) != 1 {
		t.Fatalf("got %d credit card bills, want 1", len(report.CreditCardBills))
	}

	bill := report.CreditCardBills[0]
	if !bill.BillAmount.Equal(dec("400")) {
		t.Errorf("bill amount = %s, want 400", bill.BillAmount)
	}

	if bill.Estimated {
		t.Error("bill backed by a statement must not be estimated")
	}
}

func TestGetCashflowReportBreaksDownPlanCharges(t *testing.T) {
	resetDatabase(t)

	card := mustCreateCreditAccount(t, "Visa", 15, 5)

	plan := mustCreatePlan(t, CreatePaymentPlanInput{
		Name: "Phone installment", Kind: PlanInstallment,
		Amount: dec("250"), TotalPeriods: intPtr(12),
		Frequency: FrequencyMonthly, PaymentDay: 1,
		StartDate: utcDate(2025, time.January, 1),
		AccountID: card.ID, Category: "electronics",
	})

	if _, err := BackfillPlan(testContext(), plan); err != nil {
		t.Fatalf("failed to backfill plan: %v", err)
	}

	mustCreateExpense(t, card.ID, "80", utcDate(2025, time.May, 2))

	report, err := GetCashflowReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build cashflow report: %v", err)
	}

	if len(report.CreditCardBills) != 1 {
		t.Fatalf("got %d credit card bills, want 1", len(report.CreditCardBills))
	}

	bill := report.CreditCardBills[0]

	// Window Apr 16 - May 15 holds the May 1 plan charge and the manual 80
	if !bill.PlanTotal.Equal(dec("250")) {
		t.Errorf("plan total = %s, want 250", bill.PlanTotal)
	}

	if len(bill.PlanItems) != 1 || bill.PlanItems[0].Name != "Phone installment" {
		t.Errorf("plan items = %+v, want the phone installment", bill.PlanItems)
	}

	if !bill.OtherTotal.Equal(dec("80")) {
		t.Errorf("other total = %s, want 80", bill.OtherTotal)
	}

	if !bill.BillAmount.Equal(dec("330")) {
		t.Errorf("bill amount = %s, want 330", bill.BillAmount)
	}
}

func TestGetCashflowReportIncludesScheduledPlanCharges(t *testing.T) {
	resetDatabase(t)

	card := mustCreateCreditAccount(t, "Visa", 15, 5)

	plan := mustCreatePlan(t, CreatePaymentPlanInput{
		Name: "Gym membership", Kind: PlanRecurring,
		Amount: dec("100"), Frequency: FrequencyMonthly, PaymentDay: 1,
		StartDate: utcDate(2025, time.May, 1),
		AccountID: card.ID, Category: "fitness",
	})

	// An occurrence awaiting confirmation still lands inside a closed
	// billing window and belongs to the bill due this month.
	scheduled := ScheduleScheduled
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("100"), Category: "fitness",
		AccountID: card.ID, OccurredAt: utcDate(2025, time.May, 1),
		PlanID: &plan.ID, PeriodIndex: intPtr(0), ScheduleState: &scheduled,
	})

	report, err := GetCashflowReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build cashflow report: %v", err)
	}

	if len(report.CreditCardBills) != 1 {
		t.Fatalf("got %d credit card bills, want 1", len(report.CreditCardBills))
	}

	bill := report.CreditCardBills[0]
	if !bill.BillAmount.Equal(dec("100")) {
		t.Errorf("bill amount = %s, want 100", bill.BillAmount)
	}

	if !bill.Estimated {
		t.Error("bill without a saved statement must be estimated")
	}

	if !bill.PlanTotal.Equal(dec("100")) {
		t.Errorf("plan total = %s, want 100", bill.PlanTotal)
	}

	if len(bill.PlanItems) != 1 || bill.PlanItems[0].Name != "Gym membership" {
		t.Errorf("plan items = %+v, want the gym membership", bill.PlanItems)
	}
}

func TestGetMonthlyReport(t *testing.T) {
	resetDatabase(t)

	checking := mustCreatePhysicalAccount(t, "Checking", decimal.NewFromInt(1000))
	fruit := "fruit"

	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryIncome, Amount: dec("3000"), Category: "salary",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 1),
	})
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("100"), Category: "groceries", Subcategory: &fruit,
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 5),
	})
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("200"), Category: "groceries",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 8),
	})
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("200"), Category: "dining",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 12),
	})

	report, err := GetMonthlyReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build monthly report: %v", err)
	}

	if !report.TotalIncome.Equal(dec("3000")) {
		t.Errorf("total income = %s, want 3000", report.TotalIncome)
	}

	if !report.TotalExpense.Equal(dec("500")) {
		t.Errorf("total expense = %s, want 500", report.TotalExpense)
	}

	if !report.Net.Equal(dec("2500")) {
		t.Errorf("net = %s, want 2500", report.Net)
	}

	if len(report.ByCategory) != 2 {
		t.Fatalf("got %d categories, want 2", len(report.ByCategory))
	}

	top := report.ByCategory[0]
	if top.Category != "groceries" || !top.Amount.Equal(dec("300")) {
		t.Errorf("top category = %s %s, want groceries 300", top.Category, top.Amount)
	}

	if !top.Percentage.Equal(dec("60")) {
		t.Errorf("top category share = %s, want 60", top.Percentage)
	}

	if len(top.Subcategories) != 1 || !top.Subcategories[0].Amount.Equal(dec("100")) {
		t.Errorf("subcategories = %+v, want fruit 100", top.Subcategories)
	}

	if len(report.ByAccount) != 1 {
		t.Fatalf("got %d account flows, want 1", len(report.ByAccount))
	}

	if !report.ByAccount[0].Income.Equal(dec("3000")) ||
		!report.ByAccount[0].Expense.Equal(dec("500")) {
		t.Errorf("account flow = %+v, want 3000 in / 500 out", report.ByAccount[0])
	}

	if len(report.DailyTrend) != 30 {
		t.Errorf("got %d trend points, want 30", len(report.DailyTrend))
	}
}

func TestGetMonthlyReportIncludesScheduledEntries(t *testing.T) {
	resetDatabase(t)

	checking := mustCreatePhysicalAccount(t, "Checking", decimal.NewFromInt(1000))

	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("200"), Category: "rent",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 8),
	})

	scheduled := ScheduleScheduled
	mustCreateEntry(t, CreateLedgerEntryInput{
		Kind: EntryExpense, Amount: dec("100"), Category: "utilities",
		AccountID: checking.ID, OccurredAt: utcDate(2025, time.June, 20),
		ScheduleState: &scheduled,
	})

	report, err := GetMonthlyReport(testContext(), 2025, 6)
	if err != nil {
		t.Fatalf("failed to build monthly report: %v", err)
	}

	// The monthly breakdown counts scheduled occurrences as spending of
	// the month they fall in.
	if !report.TotalExpense.Equal(dec("300")) {
		t.Errorf("total expense = %s, want 300", report.TotalExpense)
	}

	if len(report.ByCategory) != 2 {
		t.Errorf("got %d categories, want 2", len(report.ByCategory))
	}
}
