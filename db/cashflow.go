/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// EntryDetail is one line item inside a report category.
type EntryDetail struct {
	Date         string          `json:"date"`
	Note         string          `json:"note"`
	Merchant     string          `json:"merchant,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Subcategory  string          `json:"subcategory,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// CategoryFlow groups entries of one category with their total.
type CategoryFlow struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Records  []EntryDetail   `json:"records"`
}

// PlanBillItem is a plan-driven charge inside a credit card bill.
type PlanBillItem struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreditCardBill is one card's bill falling due within the report month,
// either from a saved statement or estimated from the billing window.
type CreditCardBill struct {
	AccountID       uuid.UUID       `json:"accountId"`
	Account         string          `json:"account"`
	BillAmount      decimal.Decimal `json:"billAmount"`
	DueDate         string          `json:"dueDate"`
	Estimated       bool            `json:"estimated"`
	PlanItems       []PlanBillItem  `json:"planItems"`
	PlanTotal       decimal.Decimal `json:"planTotal"`
	OtherByCategory []CategoryFlow  `json:"otherByCategory"`
	OtherTotal      decimal.Decimal `json:"otherTotal"`
}

// AdjustmentItem is a non-spending balance movement within the month.
type AdjustmentItem struct {
	Date   string          `json:"date"`
	Kind   string          `json:"kind"`
	Note   string          `json:"note"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyBalance is the realized cash position of one day.
type DailyBalance struct {
	Date           string          `json:"date"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	Net            decimal.Decimal `json:"net"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// Month-end cash position classification.
const (
	CashflowOK       = "ok"
	CashflowTight    = "tight"
	CashflowNegative = "negative"
)

// CashflowReport is the forward-looking cash plan for one month.
type CashflowReport struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	From  string `json:"from"`
	To    string `json:"to"`

	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`

	TotalIncome      decimal.Decimal `json:"totalIncome"`
	IncomeByCategory []CategoryFlow  `json:"incomeByCategory"`

	TotalExpenses   decimal.Decimal  `json:"totalExpenses"`
	DirectExpenses  []CategoryFlow   `json:"directExpenses"`
	DirectTotal     decimal.Decimal  `json:"directTotal"`
	CreditCardBills []CreditCardBill `json:"creditCardBills"`
	CreditCardTotal decimal.Decimal  `json:"creditCardTotal"`
	FixedExpenses   []CategoryFlow   `json:"fixedExpenses"`
	FixedTotal      decimal.Decimal  `json:"fixedTotal"`
	Adjustments     []AdjustmentItem `json:"adjustments"`
	AdjustmentTotal decimal.Decimal  `json:"adjustmentTotal"`

	DailyBalance []DailyBalance `json:"dailyBalance"`

	Net    decimal.Decimal `json:"net"`
	Status string          `json:"status"`
}

const civilDate = "2006-01-02"

func entryDetail(e *LedgerEntry) EntryDetail {
	d := EntryDetail{
		Date:   e.OccurredAt.UTC().Format(civilDate),
		Note:   e.Note,
		Amount: e.Amount,
	}

	if e.Merchant != nil {
		d.Merchant = *e.Merchant
	}

	if e.Counterparty != nil {
		d.Counterparty = *e.Counterparty
	}

	if e.Subcategory != nil {
		d.Subcategory = *e.Subcategory
	}

	return d
}

// groupFlows buckets entries by category, largest bucket first.
func groupFlows(entries []*LedgerEntry) []CategoryFlow {
	byCategory := make(map[string]*CategoryFlow)

	for _, e := range entries {
		flow := byCategory[e.Category]
		if flow == nil {
			flow = &CategoryFlow{Category: e.Category}
			byCategory[e.Category] = flow
		}

		flow.Amount = flow.Amount.Add(e.Amount)
		flow.Records = append(flow.Records, entryDetail(e))
	}

	flows := make([]CategoryFlow, 0, len(byCategory))

	for _, flow := range byCategory {
		flow.Amount = flow.Amount.Round(2)
		flows = append(flows, *flow)
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Amount.GreaterThan(flows[j].Amount)
	})

	return flows
}

func flowTotal(flows []CategoryFlow) decimal.Decimal {
	total := decimal.Zero
	for i := range flows {
		total = total.Add(flows[i].Amount)
	}

	return total.Round(2)
}

func isRealized(e *LedgerEntry) bool {
	return e.ScheduleState == nil || *e.ScheduleState != ScheduleScheduled
}

// GetCashflowReport builds the cash plan for one month: where money comes
// from, where it is committed to go, and the projected day-by-day
// position of the physical accounts.
func GetCashflowReport(ctx context.Context, year, month int) (*CashflowReport, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	accounts, err := ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	accountByID := make(map[uuid.UUID]*Account, len(accounts))
	excluded := make(map[uuid.UUID]bool)

	var physical []*Account

	for i := range accounts {
		a := &accounts[i]
		accountByID[a.ID] = a

		if !a.IncludeInStats {
			excluded[a.ID] = true
			continue
		}

		if a.Kind == AccountPhysical {
			physical = append(physical, a)
		}
	}

	opening := decimal.Zero
	closing := decimal.Zero

	for _, a := range physical {
		b, err := balanceForAccount(ctx, a, monthStart)
		if err != nil {
			return nil, err
		}

		opening = opening.Add(b)

		b, err = balanceForAccount(ctx, a, monthEnd)
		if err != nil {
			return nil, err
		}

		closing = closing.Add(b)
	}

	opening = opening.Round(2)
	closing = closing.Round(2)

	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at, created_at`, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list month entries: %w", err)
	}

	monthEntries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}

	report := &CashflowReport{
		Year:           year,
		Month:          month,
		From:           monthStart.Format(civilDate),
		To:             monthEnd.AddDate(0, 0, -1).Format(civilDate),
		OpeningBalance: opening,
		ClosingBalance: closing,
	}

	var income, direct, fixed []*LedgerEntry

	for i := range monthEntries {
		e := &monthEntries[i]
		if excluded[e.AccountID] {
			continue
		}

		account := accountByID[e.AccountID]
		if account == nil {
			continue
		}

		switch {
		case e.Kind == EntryIncome && isRealized(e):
			income = append(income, e)
		case e.Kind == EntryExpense && isRealized(e) && account.Kind == AccountPhysical:
			direct = append(direct, e)
		case e.Kind == EntryPayable:
			fixed = append(fixed, e)
		case e.PlanID != nil && !isRealized(e) && account.Kind != AccountCredit:
			// Upcoming plan charges that will hit cash directly
			fixed = append(fixed, e)
		}
	}

	report.IncomeByCategory = groupFlows(income)
	report.TotalIncome = flowTotal(report.IncomeByCategory)
	report.DirectExpenses = groupFlows(direct)
	report.DirectTotal = flowTotal(report.DirectExpenses)
	report.FixedExpenses = groupFlows(fixed)
	report.FixedTotal = flowTotal(report.FixedExpenses)

	for i := range accounts {
		a := &accounts[i]
		if a.Kind != AccountCredit || a.BillDay == nil || a.PayDay == nil || excluded[a.ID] {
			continue
		}

		bill, err := creditCardBill(ctx, a, year, time.Month(month))
		if err != nil {
			return nil, err
		}

		report.CreditCardBills = append(report.CreditCardBills, *bill)
		report.CreditCardTotal = report.CreditCardTotal.Add(bill.BillAmount)
	}

	report.CreditCardTotal = report.CreditCardTotal.Round(2)

	for i := range monthEntries {
		e := &monthEntries[i]
		if excluded[e.AccountID] || !isRealized(e) {
			continue
		}

		account := accountByID[e.AccountID]
		if account == nil || account.Kind != AccountPhysical {
			continue
		}

		switch e.Kind {
		case EntryBalanceAdjustment, EntryRefund, EntryReward, EntryDiscount, EntryReceivable:
			report.Adjustments = append(report.Adjustments, AdjustmentItem{
				Date: e.OccurredAt.UTC().Format(civilDate), Kind: string(e.Kind),
				Note: e.Note, Amount: e.Amount,
			})
		case EntryInterest:
			report.Adjustments = append(report.Adjustments, AdjustmentItem{
				Date: e.OccurredAt.UTC().Format(civilDate), Kind: string(e.Kind),
				Note: e.Note, Amount: e.Amount.Neg(),
			})
		}

		if e.Fee.IsPositive() {
			report.Adjustments = append(report.Adjustments, AdjustmentItem{
				Date: e.OccurredAt.UTC().Format(civilDate), Kind: "fee",
				Note: e.Note, Amount: e.Fee.Neg(),
			})
		}
	}

	for i := range report.Adjustments {
		report.AdjustmentTotal = report.AdjustmentTotal.Add(report.Adjustments[i].Amount)
	}

	report.AdjustmentTotal = report.AdjustmentTotal.Round(2)

	report.DailyBalance = dailyBalances(monthEntries, physical, monthStart, monthEnd, opening)

	report.TotalExpenses = report.DirectTotal.
		Add(report.CreditCardTotal).
		Add(report.FixedTotal).
		Round(2)

	report.Net = closing.Sub(opening).Round(2)

	switch {
	case report.Net.IsNegative():
		report.Status = CashflowNegative
	case report.TotalIncome.IsPositive() &&
		report.Net.Div(report.TotalIncome).LessThanOrEqual(decimal.NewFromFloat(0.2)):
		report.Status = CashflowTight
	default:
		report.Status = CashflowOK
	}

	return report, nil
}

// creditCardBill resolves one card's bill for the report month. A saved
// statement amount wins; otherwise the bill is estimated from the spend
// in the matching billing window.
func creditCardBill(ctx context.Context, card *Account, year int, month time.Month) (*CreditCardBill, error) {
	dueDate := dateForDay(year, month, *card.PayDay)

	// The bill due this month covers the cycle ending on last month's
	// bill day.
	billEnd := dateForDay(year, month-1, *card.BillDay)
	billStart := dateForDay(year, month-2, *card.BillDay).AddDate(0, 0, 1)

	bill := &CreditCardBill{
		AccountID: card.ID,
		Account:   card.Name,
		DueDate:   dueDate.Format(civilDate),
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var statementAmount decimal.NullDecimal

	err := pool.QueryRow(ctx, `
		SELECT statement_amount FROM statements
		WHERE account_id = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date
		LIMIT 1`, card.ID, monthStart, monthEnd).Scan(&statementAmount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find statement: %w", err)
	}

	// Scheduled plan occurrences count here: the window is closed, so a
	// not-yet-confirmed charge is still part of the bill about to be owed.
	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE account_id = $1 AND kind = $2
		  AND occurred_at >= $3 AND occurred_at < $4
		ORDER BY occurred_at`,
		card.ID, EntryExpense, billStart, billEnd.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list billing window entries: %w", err)
	}

	windowEntries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}

	planNames, err := planNamesFor(ctx, windowEntries)
	if err != nil {
		return nil, err
	}

	var other []*LedgerEntry

	estimated := decimal.Zero

	for i := range windowEntries {
		e := &windowEntries[i]
		estimated = estimated.Add(e.Amount)

		if e.PlanID != nil {
			item := PlanBillItem{
				Name:     planNames[*e.PlanID],
				Category: e.Category,
				Amount:   e.Amount,
			}
			if e.Subcategory != nil {
				item.Subcategory = *e.Subcategory
			}

			bill.PlanItems = append(bill.PlanItems, item)
			bill.PlanTotal = bill.PlanTotal.Add(e.Amount)

			continue
		}

		other = append(other, e)
	}

	bill.PlanTotal = bill.PlanTotal.Round(2)
	bill.OtherByCategory = groupFlows(other)
	bill.OtherTotal = flowTotal(bill.OtherByCategory)

	if statementAmount.Valid {
		bill.BillAmount = statementAmount.Decimal.Round(2)
	} else {
		bill.BillAmount = estimated.Round(2)
		bill.Estimated = true
	}

	return bill, nil
}

func planNamesFor(ctx context.Context, entries []LedgerEntry) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)

	for i := range entries {
		if entries[i].PlanID != nil && !seen[*entries[i].PlanID] {
			seen[*entries[i].PlanID] = true
			ids = append(ids, *entries[i].PlanID)
		}
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := pool.Query(ctx,
		`SELECT id, name FROM payment_plans WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan names: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)

		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan plan name: %w", err)
		}

		names[id] = name
	}

	return names, rows.Err()
}

// dailyBalances replays the month's realized entries on the physical
// accounts day by day, accumulating from the opening balance.
func dailyBalances(entries []LedgerEntry, physical []*Account, monthStart, monthEnd time.Time, opening decimal.Decimal) []DailyBalance {
	incomeByDay := make(map[string]decimal.Decimal)
	expenseByDay := make(map[string]decimal.Decimal)
	netByDay := make(map[string]decimal.Decimal)

	for i := range entries {
		e := &entries[i]
		if !isRealized(e) {
			continue
		}

		day := e.OccurredAt.UTC().Format(civilDate)

		for _, a := range physical {
			delta := entryDelta(e, a.ID)
			if delta.IsZero() {
				continue
			}

			netByDay[day] = netByDay[day].Add(delta)

			if delta.IsPositive() {
				incomeByDay[day] = incomeByDay[day].Add(delta)
			} else {
				expenseByDay[day] = expenseByDay[day].Add(delta.Neg())
			}
		}
	}

	var days []DailyBalance

	running := opening

	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		day := d.Format(civilDate)
		running = running.Add(netByDay[day])

		days = append(days, DailyBalance{
			Date:           day,
			Income:         incomeByDay[day].Round(2),
			Expense:        expenseByDay[day].Round(2),
			Net:            netByDay[day].Round(2),
			RunningBalance: running.Round(2),
		})
	}

	return days
}

// MonthlySubcategory is a subcategory slice of one spending category.
type MonthlySubcategory struct {
	Subcategory string          `json:"subcategory"`
	Amount      decimal.Decimal `json:"amount"`
}

// MonthlyCategory is one spending category with its share of the month.
type MonthlyCategory struct {
	Category      string               `json:"category"`
	Amount        decimal.Decimal      `json:"amount"`
	Percentage    decimal.Decimal      `json:"percentage"`
	Subcategories []MonthlySubcategory `json:"subcategories,omitempty"`
}

// MonthlyAccountFlow is the in/out volume of one account for the month.
type MonthlyAccountFlow struct {
	AccountID uuid.UUID       `json:"accountId"`
	Account   string          `json:"account"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
}

// MonthlyTrendPoint is one day of income and spending.
type MonthlyTrendPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthlyReport is the retrospective income and spending breakdown of a
// month.
type MonthlyReport struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`

	ByCategory []MonthlyCategory    `json:"byCategory"`
	ByAccount  []MonthlyAccountFlow `json:"byAccount"`
	DailyTrend []MonthlyTrendPoint  `json:"dailyTrend"`
}

// GetMonthlyReport breaks down realized income and spending for one
// month by category, account and day.
func GetMonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	accounts, err := ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	accountByID := make(map[uuid.UUID]*Account, len(accounts))
	for i := range accounts {
		accountByID[accounts[i].ID] = &accounts[i]
	}

	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE occurred_at >= $1 AND occurred_at < $2
		  AND kind IN ($3, $4)
		ORDER BY occurred_at`,
		monthStart, monthEnd, EntryIncome, EntryExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to list month entries: %w", err)
	}

	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{Year: year, Month: month}

	categories := make(map[string]*MonthlyCategory)
	subcategories := make(map[string]map[string]decimal.Decimal)
	flowsByAccount := make(map[uuid.UUID]*MonthlyAccountFlow)
	trendByDay := make(map[string]*MonthlyTrendPoint)

	for i := range entries {
		e := &entries[i]

		account := accountByID[e.AccountID]
		if account == nil || !account.IncludeInStats {
			continue
		}

		flow := flowsByAccount[e.AccountID]
		if flow == nil {
			flow = &MonthlyAccountFlow{AccountID: e.AccountID, Account: account.Name}
			flowsByAccount[e.AccountID] = flow
		}

		day := e.OccurredAt.UTC().Format(civilDate)

		point := trendByDay[day]
		if point == nil {
			point = &MonthlyTrendPoint{Date: day}
			trendByDay[day] = point
		}

		if e.Kind == EntryIncome {
			report.TotalIncome = report.TotalIncome.Add(e.Amount)
			flow.Income = flow.Income.Add(e.Amount)
			point.Income = point.Income.Add(e.Amount)

			continue
		}

		report.TotalExpense = report.TotalExpense.Add(e.Amount)
		flow.Expense = flow.Expense.Add(e.Amount)
		point.Expense = point.Expense.Add(e.Amount)

		category := categories[e.Category]
		if category == nil {
			category = &MonthlyCategory{Category: e.Category}
			categories[e.Category] = category
			subcategories[e.Category] = make(map[string]decimal.Decimal)
		}

		category.Amount = category.Amount.Add(e.Amount)

		if e.Subcategory != nil {
			subs := subcategories[e.Category]
			subs[*e.Subcategory] = subs[*e.Subcategory].Add(e.Amount)
		}
	}

	report.TotalIncome = report.TotalIncome.Round(2)
	report.TotalExpense = report.TotalExpense.Round(2)
	report.Net = report.TotalIncome.Sub(report.TotalExpense).Round(2)

	for name, category := range categories {
		category.Amount = category.Amount.Round(2)

		if report.TotalExpense.IsPositive() {
			category.Percentage = category.Amount.
				Div(report.TotalExpense).
				Mul(decimal.NewFromInt(100)).
				Round(1)
		}

		for sub, amount := range subcategories[name] {
			category.Subcategories = append(category.Subcategories, MonthlySubcategory{
				Subcategory: sub,
				Amount:      amount.Round(2),
			})
		}

		sort.Slice(category.Subcategories, func(i, j int) bool {
			return category.Subcategories[i].Amount.GreaterThan(category.Subcategories[j].Amount)
		})

		report.ByCategory = append(report.ByCategory, *category)
	}

	sort.Slice(report.ByCategory, func(i, j int) bool {
		return report.ByCategory[i].Amount.GreaterThan(report.ByCategory[j].Amount)
	})

	for _, flow := range flowsByAccount {
		flow.Income = flow.Income.Round(2)
		flow.Expense = flow.Expense.Round(2)
		report.ByAccount = append(report.ByAccount, *flow)
	}

	sort.Slice(report.ByAccount, func(i, j int) bool {
		return report.ByAccount[i].Account < report.ByAccount[j].Account
	})

	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		day := d.Format(civilDate)

		point := trendByDay[day]
		if point == nil {
			point = &MonthlyTrendPoint{Date: day}
		}

		point.Income = point.Income.Round(2)
		point.Expense = point.Expense.Round(2)
		report.DailyTrend = append(report.DailyTrend, *point)
	}

	return report, nil
}
