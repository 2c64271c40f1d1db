/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// API responses carry monetary values as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// AccountKind distinguishes asset accounts from liability accounts.
type AccountKind string

const (
	AccountPhysical AccountKind = "physical"
	AccountCredit   AccountKind = "credit"
)

// EntryKind is the transaction type of a ledger entry.
type EntryKind string

const (
	EntryExpense           EntryKind = "expense"
	EntryIncome            EntryKind = "income"
	EntryTransfer          EntryKind = "transfer"
	EntryReceivable        EntryKind = "receivable"
	EntryPayable           EntryKind = "payable"
	EntryBalanceAdjustment EntryKind = "balance_adjustment"
	EntryRefund            EntryKind = "refund"
	EntryInterest          EntryKind = "interest"
	EntryReward            EntryKind = "reward"
	EntryDiscount          EntryKind = "discount"
)

// ScheduleState tracks the lifecycle of a plan-materialized entry.
// Entries created by hand have no schedule state.
type ScheduleState string

const (
	ScheduleScheduled ScheduleState = "scheduled"
	ScheduleConfirmed ScheduleState = "confirmed"
	ScheduleSkipped   ScheduleState = "skipped"
)

// PlanKind distinguishes fixed-length installments from open-ended
// recurring obligations.
type PlanKind string

const (
	PlanInstallment PlanKind = "installment"
	PlanRecurring   PlanKind = "recurring"
)

// PlanFrequency is the recurrence interval of a payment plan.
type PlanFrequency string

const (
	FrequencyWeekly  PlanFrequency = "weekly"
	FrequencyMonthly PlanFrequency = "monthly"
	FrequencyYearly  PlanFrequency = "yearly"
)

// PlanStatus is the lifecycle status of a payment plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanPaused    PlanStatus = "paused"
)

// StatementStatus is the lifecycle status of a saved credit card statement.
type StatementStatus string

const (
	StatementPending   StatementStatus = "pending"
	StatementConfirmed StatementStatus = "confirmed"
	StatementPaid      StatementStatus = "paid"
)

// CategoryPayables marks plans whose materialized entries are payables
// rather than plain expenses.
const CategoryPayables = "payables"

// Account is a physical (cash, bank) or credit card account.
type Account struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Kind           AccountKind         `json:"kind"`
	Grouping       string              `json:"grouping"`
	IncludeInStats bool                `json:"includeInStats"`
	InitialBalance decimal.Decimal     `json:"initialBalance"`
	Currency       string              `json:"currency"`
	CreditLimit    decimal.NullDecimal `json:"creditLimit"`
	BillDay        *int                `json:"billDay"`
	PayDay         *int                `json:"payDay"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// LedgerEntry is a single dated ledger record. Amounts are always
// non-negative; the kind determines the sign of the balance effect.
type LedgerEntry struct {
	ID                uuid.UUID       `json:"id"`
	Kind              EntryKind       `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Discount          decimal.Decimal `json:"discount"`
	Category          string          `json:"category"`
	Subcategory       *string         `json:"subcategory"`
	Note              string          `json:"note"`
	Merchant          *string         `json:"merchant"`
	Counterparty      *string         `json:"counterparty"`
	AccountID         uuid.UUID       `json:"accountId"`
	ToAccountID       *uuid.UUID      `json:"toAccountId"`
	OccurredAt        time.Time       `json:"occurredAt"`
	BillingAssignment *time.Time      `json:"billingAssignment"`
	Recurring         bool            `json:"recurring"`
	PlanID            *uuid.UUID      `json:"planId"`
	PeriodIndex       *int            `json:"periodIndex"`
	ScheduleState     *ScheduleState  `json:"scheduleState"`
	StatementID       *uuid.UUID      `json:"statementId"`
	Reconciled        bool            `json:"reconciled"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// PaymentPlan is a recurring obligation or installment schedule whose
// periods are materialized as ledger entries.
type PaymentPlan struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Kind         PlanKind            `json:"kind"`
	Amount       decimal.Decimal     `json:"amount"`
	TotalAmount  decimal.NullDecimal `json:"totalAmount"`
	TotalPeriods *int                `json:"totalPeriods"`
	Frequency    PlanFrequency       `json:"frequency"`
	PaymentDay   int                 `json:"paymentDay"`
	StartDate    time.Time           `json:"startDate"`
	AccountID    uuid.UUID           `json:"accountId"`
	Category     string              `json:"category"`
	Subcategory  *string             `json:"subcategory"`
	Counterparty *string             `json:"counterparty"`
	Note         *string             `json:"note"`
	Status       PlanStatus          `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Statement is a saved reconciliation of one credit card billing cycle.
type Statement struct {
	ID                uuid.UUID           `json:"id"`
	AccountID         uuid.UUID           `json:"accountId"`
	BillingCycleStart time.Time           `json:"billingCycleStart"`
	BillingCycleEnd   time.Time           `json:"billingCycleEnd"`
	DueDate           time.Time           `json:"dueDate"`
	StatementAmount   decimal.NullDecimal `json:"statementAmount"`
	PaidAmount        decimal.NullDecimal `json:"paidAmount"`
	PaidDate          *time.Time          `json:"paidDate"`
	Status            StatementStatus     `json:"status"`
	Note              *string             `json:"note"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}
