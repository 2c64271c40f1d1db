// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testContext() context.Context {
	return context.Background()
}

func intPtr(value int) *int {
	return &value
}

func mustCreateAccount(t *testing.T, input CreateAccountInput) *Account {
	t.Helper()

	if input.Currency == "" {
		input.Currency = "TWD"
	}

	account, err := CreateAccount(testContext(), input)
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return account
}

func mustCreatePhysicalAccount(t *testing.T, name string, initial decimal.Decimal) *Account {
	t.Helper()

	return mustCreateAccount(t, CreateAccountInput{
		Name:           name,
		Kind:           AccountPhysical,
		IncludeInStats: true,
		InitialBalance: initial,
	})
}

func mustCreateCreditAccount(t *testing.T, name string, billDay, payDay int) *Account {
	t.Helper()

	return mustCreateAccount(t, CreateAccountInput{
		Name:           name,
		Kind:           AccountCredit,
		IncludeInStats: true,
		CreditLimit:    decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		BillDay:        intPtr(billDay),
		PayDay:         intPtr(payDay),
	})
}

func mustCreateEntry(t *testing.T, input CreateLedgerEntryInput) *LedgerEntry {
	t.Helper()

	entry, err := CreateLedgerEntry(testContext(), input)
	if err != nil {
		t.Fatalf("failed to create ledger entry: %v", err)
	}

	return entry
}

func mustCreateExpense(t *testing.T, accountID uuid.UUID, amount string, occurred time.Time) *LedgerEntry {
	t.Helper()

	return mustCreateEntry(t, CreateLedgerEntryInput{
		Kind:       EntryExpense,
		Amount:     decimal.RequireFromString(amount),
		Category:   "shopping",
		AccountID:  accountID,
		OccurredAt: occurred,
	})
}

func mustCreatePlan(t *testing.T, input CreatePaymentPlanInput) *PaymentPlan {
	t.Helper()

	plan, err := CreatePaymentPlan(testContext(), input)
	if err != nil {
		t.Fatalf("failed to create payment plan: %v", err)
	}

	return plan
}
